package document

import (
	"strings"

	"github.com/ZaguanLabs/xlate"
)

// RebuildOptions controls document reconstruction.
type RebuildOptions struct {
	// Partial permits emitting a document whose units are not all in a
	// shippable state. Unshippable units keep whatever target they have,
	// usually empty. Off by default so a half-translated document is never
	// shipped as if complete.
	Partial bool

	// TargetLang overrides the target-language attribute written into the
	// output. Defaults to the language declared by the input document.
	TargetLang string
}

// Rebuild serializes the document with translated targets spliced into the
// original skeleton. Everything outside the target spans and the
// target-language attribute is emitted byte-for-byte as parsed.
func Rebuild(doc *Document, opts RebuildOptions) ([]byte, error) {
	if !opts.Partial {
		var pending []string
		for _, u := range doc.Units {
			if !u.Shippable() {
				pending = append(pending, u.ID)
			}
		}
		if len(pending) > 0 {
			return nil, &xlate.IncompleteTranslationError{Pending: pending}
		}
	}

	lang := opts.TargetLang
	if lang == "" {
		lang = doc.TargetLang
	}

	var b strings.Builder
	for _, c := range doc.chunks {
		if !c.isSlot {
			b.WriteString(c.raw)
			continue
		}
		switch c.kind {
		case slotTarget:
			u := doc.Units[c.unitIdx]
			b.WriteString(c.wrapOpen)
			b.WriteString(u.Target)
			b.WriteString(c.wrapEnd)
		case slotTrgLang:
			b.WriteString(escapeText(lang))
		}
	}

	return []byte(b.String()), nil
}
