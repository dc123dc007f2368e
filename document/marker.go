package document

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Segment is one span of a unit's source or target content: either
// translatable text or a marker that must pass through translation intact.
type Segment struct {
	Marker  bool
	Kind    MarkerKind
	Literal string // for markers: exact bytes; for text: raw (possibly entity-escaped) bytes
	Text    string // for text segments: entity-decoded form
}

var (
	// platform placeholders embedded in text: {{name}}, {name}, %s, %1$s
	rePlaceholder = regexp.MustCompile(`\{\{[^}]+\}\}|\{[a-zA-Z_][^}]*\}|%(?:\d+\$)?[sdvfq]`)

	// protection token in provider responses
	reProtected = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Segments splits raw inline markup into an ordered list of text and marker
// spans. Markup tags are detected with the html tokenizer so that attribute
// quoting and self-closing forms never confuse the scan; the exact input
// bytes of each tag are kept via the tokenizer's raw view.
func Segments(raw string) []Segment {
	var segs []Segment
	z := html.NewTokenizer(strings.NewReader(raw))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		lit := string(z.Raw())
		switch tt {
		case html.TextToken:
			segs = append(segs, splitPlaceholders(lit)...)
		default:
			// Start, end, self-closing tags, comments, doctypes all pass
			// through as opaque markers.
			segs = append(segs, Segment{Marker: true, Kind: MarkerTag, Literal: lit})
		}
	}

	return segs
}

// splitPlaceholders splits a raw text span around platform placeholders.
func splitPlaceholders(raw string) []Segment {
	var segs []Segment
	last := 0
	for _, loc := range rePlaceholder.FindAllStringIndex(raw, -1) {
		if loc[0] > last {
			segs = append(segs, textSegment(raw[last:loc[0]]))
		}
		segs = append(segs, Segment{Marker: true, Kind: MarkerPlaceholder, Literal: raw[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(raw) {
		segs = append(segs, textSegment(raw[last:]))
	}
	return segs
}

func textSegment(raw string) Segment {
	return Segment{Literal: raw, Text: html.UnescapeString(raw)}
}

// Markers returns the ordered marker spans of raw inline markup.
func Markers(raw string) []Marker {
	var markers []Marker
	for _, seg := range Segments(raw) {
		if seg.Marker {
			markers = append(markers, Marker{Kind: seg.Kind, Literal: seg.Literal})
		}
	}
	return markers
}

// Protect replaces every marker in raw with a stable numbered token
// ([PH0], [PH1], …) in order of appearance, decoding entities in the text
// spans, and returns the protected text together with the captured marker
// literals so Restore can put them back after translation.
func Protect(raw string) (string, []string) {
	var b strings.Builder
	var literals []string

	for _, seg := range Segments(raw) {
		if seg.Marker {
			fmt.Fprintf(&b, "[PH%d]", len(literals))
			literals = append(literals, seg.Literal)
			continue
		}
		b.WriteString(seg.Text)
	}

	return b.String(), literals
}

// Restore substitutes [PHn] tokens in translated text back with the literals
// captured by Protect, re-escaping the text spans between them so the result
// is valid inline markup. Unknown indices leave the token as-is; dropped
// tokens are left for the validator to report.
func Restore(translated string, literals []string) string {
	var b strings.Builder
	last := 0
	for _, loc := range reProtected.FindAllStringSubmatchIndex(translated, -1) {
		if loc[0] > last {
			b.WriteString(escapeText(translated[last:loc[0]]))
		}
		idx := 0
		fmt.Sscanf(translated[loc[2]:loc[3]], "%d", &idx)
		if idx >= 0 && idx < len(literals) {
			b.WriteString(literals[idx])
		} else {
			b.WriteString(translated[loc[0]:loc[1]])
		}
		last = loc[1]
	}
	if last < len(translated) {
		b.WriteString(escapeText(translated[last:]))
	}
	return b.String()
}

// ProtectionHint returns the instruction appended to provider prompts so the
// backend preserves protection tokens.
func ProtectionHint() string {
	return "Preserve all [PHn] markers exactly as they appear. Do not translate, move, or remove them."
}

// escapeText escapes the XML special characters of a text span.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// PlainText returns the translatable text of raw inline markup with markers
// removed and entities decoded. Used for classification and fingerprinting.
func PlainText(raw string) string {
	var b strings.Builder
	for _, seg := range Segments(raw) {
		if !seg.Marker {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
