// Package document implements the structural model, parser, and rebuilder
// for bilingual translation-unit files (XLIFF 1.2 and 2.0).
package document

import (
	"github.com/ZaguanLabs/xlate"
)

// MarkerKind distinguishes the flavors of non-translatable inline content.
type MarkerKind string

const (
	// MarkerTag is an inline markup element (opening, closing, or self-closing).
	MarkerTag MarkerKind = "tag"
	// MarkerPlaceholder is a platform placeholder such as {{name}} or %s.
	MarkerPlaceholder MarkerKind = "placeholder"
)

// Marker is one non-translatable inline span of a unit's source text.
// Its literal must survive translation byte-for-byte, in order.
type Marker struct {
	Kind    MarkerKind
	Literal string // exact serialized form as it appears in the document
}

// Unit is one addressable translatable fragment of a Document.
type Unit struct {
	ID      string            // unique within the document
	Source  string            // raw inner markup of the source element
	Target  string            // raw inner markup of the target element; empty until translated
	Role    xlate.ContentRole // assigned by the classifier
	Ref     xlate.ContentRef  // content item and field this unit belongs to
	Status  xlate.UnitStatus
	Markers []Marker // ordered markers derived from Source
	Note    string   // translator note carried from the document, if any
}

// Terminal reports whether the unit reached a per-unit terminal state:
// adopted, validated, or flagged. Untranslated units are not terminal.
func (u *Unit) Terminal() bool {
	return u.Status != xlate.StatusUntranslated
}

// Shippable reports whether the unit may appear in a complete (non-partial)
// rebuilt document.
func (u *Unit) Shippable() bool {
	switch u.Status {
	case xlate.StatusMachineTranslated, xlate.StatusMemoryHit, xlate.StatusValidated:
		return true
	}
	return false
}

// slotKind marks the positions in the skeleton that the rebuilder fills in.
type slotKind int

const (
	slotTarget  slotKind = iota // inner content of a unit's target element
	slotTrgLang                 // value of the target-language attribute
)

// chunk is one piece of the document skeleton: either literal bytes copied
// verbatim from the input, or a slot filled during rebuild. The chunk order
// is fixed at parse time and never reordered.
type chunk struct {
	raw      string
	isSlot   bool
	kind     slotKind
	unitIdx  int    // for slotTarget
	wrapOpen string // non-empty when the target element itself must be synthesized
	wrapEnd  string
}

// Document is the in-memory model of one bilingual translation-unit file.
// The skeleton snapshot is immutable after parsing.
type Document struct {
	Version    string // structural format version: "1.2" or "2.0"
	SourceLang string
	TargetLang string
	Units      []*Unit

	chunks []chunk
}

// Unit returns the unit with the given ID, or nil.
func (d *Document) Unit(id string) *Unit {
	for _, u := range d.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Refs returns the distinct content-item references of the document's units,
// in document order.
func (d *Document) Refs() []xlate.ContentRef {
	seen := make(map[string]bool)
	var refs []xlate.ContentRef
	for _, u := range d.Units {
		if u.Ref.IsZero() || seen[u.Ref.Key()] {
			continue
		}
		seen[u.Ref.Key()] = true
		refs = append(refs, u.Ref)
	}
	return refs
}

// ItemRef returns the content-item reference of the document as a whole:
// the item ID shared by the units, without a field component.
func (d *Document) ItemRef() xlate.ContentRef {
	for _, u := range d.Units {
		if u.Ref.ItemID != "" {
			return xlate.ContentRef{ItemID: u.Ref.ItemID}
		}
	}
	return xlate.ContentRef{}
}
