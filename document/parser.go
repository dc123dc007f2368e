package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/ZaguanLabs/xlate"
)

var (
	reTargetLang12 = regexp.MustCompile(`target-language\s*=\s*["']([^"']*)["']`)
	reTargetLang20 = regexp.MustCompile(`trgLang\s*=\s*["']([^"']*)["']`)
)

// Parse builds a Document from a serialized XLIFF 1.2 or 2.0 file.
//
// Parsing is read-only: the input is never mutated, and the skeleton
// snapshot (everything that is not translatable text) is captured as an
// ordered chunk list keyed to byte offsets in the input, which is what lets
// Rebuild emit a byte-faithful copy with only the translated spans and the
// target-language attribute replaced.
func Parse(input []byte) (*Document, error) {
	d := xml.NewDecoder(bytes.NewReader(input))

	for {
		tokStart := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			return nil, &xlate.MalformedDocumentError{Message: "no root element"}
		}
		if err != nil {
			return nil, &xlate.MalformedDocumentError{Message: "invalid XML", Cause: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local != "xliff" {
			return nil, &xlate.MalformedDocumentError{
				Message: "root element is <" + start.Name.Local + ">, want <xliff>",
			}
		}

		version := attr(start, "version")
		switch version {
		case "1.2":
			return parse12(d, input)
		case "2.0":
			return parse20(d, input, tokStart, start)
		case "":
			return nil, &xlate.MissingAttributeError{Attribute: "version", Element: "xliff"}
		default:
			return nil, &xlate.UnsupportedVersionError{Version: version}
		}
	}
}

// parseState carries the incremental skeleton build shared by both versions.
type parseState struct {
	input    []byte
	doc      *Document
	lastEmit int64
}

func (p *parseState) emitRaw(upto int64) {
	if upto > p.lastEmit {
		p.doc.chunks = append(p.doc.chunks, chunk{raw: string(p.input[p.lastEmit:upto])})
		p.lastEmit = upto
	}
}

// emitTargetSlot records the inner span [s,e) of a target element as the
// fill-in slot for the given unit.
func (p *parseState) emitTargetSlot(unitIdx int, s, e int64) {
	p.emitRaw(s)
	p.doc.chunks = append(p.doc.chunks, chunk{isSlot: true, kind: slotTarget, unitIdx: unitIdx})
	p.lastEmit = e
}

// emitTargetWrap records an insertion point at offset off where a whole
// target element must be synthesized during rebuild.
func (p *parseState) emitTargetWrap(unitIdx int, off int64, indent string) {
	p.emitRaw(off)
	p.doc.chunks = append(p.doc.chunks, chunk{
		isSlot:   true,
		kind:     slotTarget,
		unitIdx:  unitIdx,
		wrapOpen: indent + "<target>",
		wrapEnd:  "</target>",
	})
}

// emitLangSlot records the byte span of a target-language attribute value.
func (p *parseState) emitLangSlot(s, e int64) {
	p.emitRaw(s)
	p.doc.chunks = append(p.doc.chunks, chunk{isSlot: true, kind: slotTrgLang})
	p.lastEmit = e
}

func (p *parseState) finish() {
	p.emitRaw(int64(len(p.input)))
}

// parse12 handles XLIFF 1.2: <file original source-language target-language>
// with <trans-unit id resname><source/><target/><note/>.
func parse12(d *xml.Decoder, input []byte) (*Document, error) {
	st := &parseState{input: input, doc: &Document{Version: "1.2"}}

	var (
		itemID     string
		unit       *Unit
		hasTarget  bool
		srcIndent  string
		sourceSeen bool
	)

	for {
		tokStart := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &xlate.MalformedDocumentError{Message: "invalid XML", Cause: err}
		}
		tokEnd := d.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "file":
				srcLang := attr(t, "source-language")
				if srcLang == "" {
					return nil, &xlate.MissingAttributeError{Attribute: "source-language", Element: "file"}
				}
				if err := validateLang(srcLang); err != nil {
					return nil, err
				}
				itemID = attr(t, "original")
				if itemID == "" {
					return nil, &xlate.MissingAttributeError{Attribute: "original", Element: "file"}
				}
				if st.doc.SourceLang == "" {
					st.doc.SourceLang = srcLang
				}
				if trg := attr(t, "target-language"); trg != "" {
					if err := validateLang(trg); err != nil {
						return nil, err
					}
					st.doc.TargetLang = trg
					if loc := reTargetLang12.FindSubmatchIndex(input[tokStart:tokEnd]); loc != nil {
						st.emitLangSlot(tokStart+int64(loc[2]), tokStart+int64(loc[3]))
					}
				}

			case "trans-unit":
				id := attr(t, "id")
				if id == "" {
					return nil, &xlate.MissingAttributeError{Attribute: "id", Element: "trans-unit"}
				}
				field := attr(t, "resname")
				if field == "" {
					field = id
				}
				unit = &Unit{
					ID:     id,
					Ref:    xlate.ContentRef{ItemID: itemID, Field: field},
					Status: xlate.StatusUntranslated,
				}
				hasTarget = false
				sourceSeen = false

			case "source":
				if unit == nil {
					continue
				}
				srcIndent = lineIndent(input, tokStart)
				s, e, err := innerSpan(d)
				if err != nil {
					return nil, &xlate.MalformedDocumentError{Message: "unterminated <source>", Cause: err}
				}
				unit.Source = string(input[s:e])
				unit.Markers = Markers(unit.Source)
				sourceSeen = true

			case "target":
				if unit == nil {
					continue
				}
				hasTarget = true
				selfClosing := bytes.HasSuffix(bytes.TrimSpace(input[tokStart:tokEnd]), []byte("/>"))
				s, e, err := innerSpan(d)
				if err != nil {
					return nil, &xlate.MalformedDocumentError{Message: "unterminated <target>", Cause: err}
				}
				if selfClosing {
					// Replace the whole <target/> token with a synthesized pair.
					st.emitRaw(tokStart)
					st.doc.chunks = append(st.doc.chunks, chunk{
						isSlot:   true,
						kind:     slotTarget,
						unitIdx:  len(st.doc.Units),
						wrapOpen: "<target>",
						wrapEnd:  "</target>",
					})
					st.lastEmit = tokEnd
				} else {
					unit.Target = string(input[s:e])
					st.emitTargetSlot(len(st.doc.Units), s, e)
				}

			case "note":
				if unit == nil {
					continue
				}
				s, e, err := innerSpan(d)
				if err != nil {
					return nil, &xlate.MalformedDocumentError{Message: "unterminated <note>", Cause: err}
				}
				unit.Note = strings.TrimSpace(string(input[s:e]))
			}

		case xml.EndElement:
			if t.Name.Local == "trans-unit" && unit != nil {
				if !sourceSeen {
					return nil, &xlate.MalformedDocumentError{
						Message: "trans-unit " + unit.ID + " has no <source>",
					}
				}
				if !hasTarget {
					st.emitTargetWrap(len(st.doc.Units), tokStart, srcIndent)
				}
				st.doc.Units = append(st.doc.Units, unit)
				unit = nil
			}
		}
	}

	if st.doc.SourceLang == "" {
		return nil, &xlate.MissingAttributeError{Attribute: "source-language", Element: "file"}
	}
	st.finish()
	return st.doc, nil
}

// parse20 handles XLIFF 2.0: <xliff srcLang trgLang><file id><unit id name>
// with <segment><source/><target/></segment>.
func parse20(d *xml.Decoder, input []byte, xliffStart int64, root xml.StartElement) (*Document, error) {
	st := &parseState{input: input, doc: &Document{Version: "2.0"}}

	srcLang := attr(root, "srcLang")
	if srcLang == "" {
		return nil, &xlate.MissingAttributeError{Attribute: "srcLang", Element: "xliff"}
	}
	if err := validateLang(srcLang); err != nil {
		return nil, err
	}
	st.doc.SourceLang = srcLang

	xliffEnd := d.InputOffset()
	if trg := attr(root, "trgLang"); trg != "" {
		if err := validateLang(trg); err != nil {
			return nil, err
		}
		st.doc.TargetLang = trg
		if loc := reTargetLang20.FindSubmatchIndex(input[xliffStart:xliffEnd]); loc != nil {
			st.emitLangSlot(xliffStart+int64(loc[2]), xliffStart+int64(loc[3]))
		}
	}

	var (
		itemID     string
		unit       *Unit
		inSegment  bool
		hasTarget  bool
		srcIndent  string
		sourceSeen bool
	)

	for {
		tokStart := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &xlate.MalformedDocumentError{Message: "invalid XML", Cause: err}
		}
		tokEnd := d.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "file":
				itemID = attr(t, "id")
				if itemID == "" {
					return nil, &xlate.MissingAttributeError{Attribute: "id", Element: "file"}
				}

			case "unit":
				id := attr(t, "id")
				if id == "" {
					return nil, &xlate.MissingAttributeError{Attribute: "id", Element: "unit"}
				}
				field := attr(t, "name")
				if field == "" {
					field = id
				}
				unit = &Unit{
					ID:     id,
					Ref:    xlate.ContentRef{ItemID: itemID, Field: field},
					Status: xlate.StatusUntranslated,
				}
				sourceSeen = false

			case "segment":
				inSegment = true
				hasTarget = false

			case "source":
				if unit == nil || !inSegment {
					continue
				}
				srcIndent = lineIndent(input, tokStart)
				s, e, err := innerSpan(d)
				if err != nil {
					return nil, &xlate.MalformedDocumentError{Message: "unterminated <source>", Cause: err}
				}
				unit.Source = string(input[s:e])
				unit.Markers = Markers(unit.Source)
				sourceSeen = true

			case "target":
				if unit == nil || !inSegment {
					continue
				}
				hasTarget = true
				selfClosing := bytes.HasSuffix(bytes.TrimSpace(input[tokStart:tokEnd]), []byte("/>"))
				s, e, err := innerSpan(d)
				if err != nil {
					return nil, &xlate.MalformedDocumentError{Message: "unterminated <target>", Cause: err}
				}
				if selfClosing {
					st.emitRaw(tokStart)
					st.doc.chunks = append(st.doc.chunks, chunk{
						isSlot:   true,
						kind:     slotTarget,
						unitIdx:  len(st.doc.Units),
						wrapOpen: "<target>",
						wrapEnd:  "</target>",
					})
					st.lastEmit = tokEnd
				} else {
					unit.Target = string(input[s:e])
					st.emitTargetSlot(len(st.doc.Units), s, e)
				}

			case "notes":
				s, e, err := innerSpan(d)
				if err != nil {
					return nil, &xlate.MalformedDocumentError{Message: "unterminated <notes>", Cause: err}
				}
				if unit != nil {
					unit.Note = strings.TrimSpace(PlainText(string(input[s:e])))
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "segment":
				if unit != nil && !hasTarget {
					st.emitTargetWrap(len(st.doc.Units), tokStart, srcIndent)
				}
				inSegment = false
			case "unit":
				if unit != nil {
					if !sourceSeen {
						return nil, &xlate.MalformedDocumentError{
							Message: "unit " + unit.ID + " has no <source>",
						}
					}
					st.doc.Units = append(st.doc.Units, unit)
					unit = nil
				}
			}
		}
	}

	st.finish()
	return st.doc, nil
}

// innerSpan consumes tokens until the current element closes and returns the
// byte span of its inner content. Works for self-closing elements too, where
// the span is empty.
func innerSpan(d *xml.Decoder) (start, end int64, err error) {
	start = d.InputOffset()
	depth := 1
	for {
		pre := d.InputOffset()
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, 0, io.ErrUnexpectedEOF
			}
			return 0, 0, err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				return start, pre, nil
			}
		}
	}
}

// attr returns the value of the named attribute, ignoring namespace prefixes.
func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// lineIndent returns the whitespace run preceding offset on its line, used
// when synthesizing a target element so the output stays visually aligned.
func lineIndent(input []byte, off int64) string {
	i := off
	for i > 0 {
		c := input[i-1]
		if c == '\n' || c == '\r' {
			break
		}
		if c != ' ' && c != '\t' {
			return ""
		}
		i--
	}
	return string(input[i:off])
}

// validateLang rejects language codes that are not valid BCP 47 tags.
func validateLang(code string) error {
	if _, err := language.Parse(strings.ReplaceAll(code, "_", "-")); err != nil {
		return &xlate.MalformedDocumentError{Message: "invalid language code " + code, Cause: err}
	}
	return nil
}
