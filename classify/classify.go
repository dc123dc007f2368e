// Package classify assigns content roles to translation units.
//
// Classification is an ordered chain of pure rules: an explicit field-name
// rule first, then a length/punctuation heuristic. The same unit always
// yields the same role, and a wrong role only steers style policy; it never
// blocks the pipeline.
package classify

import (
	"strings"
	"unicode"

	"github.com/ZaguanLabs/xlate"
	"github.com/ZaguanLabs/xlate/document"
)

// Rule inspects a unit and either assigns a role or passes.
type Rule interface {
	// Apply returns the role and true when the rule matches.
	Apply(u *document.Unit) (xlate.ContentRole, bool)
}

// Classifier runs an ordered rule chain over units.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the default rule chain:
// field-name patterns, then the text heuristic.
func New() *Classifier {
	return &Classifier{rules: []Rule{FieldNameRule{}, HeuristicRule{}}}
}

// NewWithRules creates a classifier with a custom rule chain.
func NewWithRules(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify assigns a role to the unit and returns it. The first matching
// rule wins; when nothing matches the unit defaults to body.
func (c *Classifier) Classify(u *document.Unit) xlate.ContentRole {
	for _, r := range c.rules {
		if role, ok := r.Apply(u); ok {
			u.Role = role
			return role
		}
	}
	u.Role = xlate.RoleBody
	return xlate.RoleBody
}

// ClassifyAll annotates every unit of a document.
func (c *Classifier) ClassifyAll(doc *document.Document) {
	for _, u := range doc.Units {
		c.Classify(u)
	}
}

// fieldPatterns maps field-name fragments to roles. Checked in a fixed
// order so that overlapping names (e.g. "seo_title") resolve the same way
// on every run.
var fieldPatterns = []struct {
	fragment string
	role     xlate.ContentRole
}{
	{"seo", xlate.RoleMetadata},
	{"meta", xlate.RoleMetadata},
	{"slug", xlate.RoleMetadata},
	{"description", xlate.RoleMetadata},
	{"keyword", xlate.RoleMetadata},
	{"title", xlate.RoleTitle},
	{"heading", xlate.RoleTitle},
	{"headline", xlate.RoleTitle},
	{"excerpt", xlate.RoleShortForm},
	{"summary", xlate.RoleShortForm},
	{"caption", xlate.RoleShortForm},
	{"label", xlate.RoleShortForm},
	{"button", xlate.RoleShortForm},
	{"body", xlate.RoleBody},
	{"content", xlate.RoleBody},
	{"text", xlate.RoleBody},
}

// FieldNameRule assigns a role from the unit's declared field name.
type FieldNameRule struct{}

// Apply matches known field-name fragments against the unit's reference field.
func (FieldNameRule) Apply(u *document.Unit) (xlate.ContentRole, bool) {
	field := strings.ToLower(u.Ref.Field)
	if field == "" {
		return "", false
	}
	for _, p := range fieldPatterns {
		if strings.Contains(field, p.fragment) {
			return p.role, true
		}
	}
	return "", false
}

// shortFormMaxRunes bounds what still counts as a short fragment.
const shortFormMaxRunes = 60

// HeuristicRule falls back to text shape when no field-name signal exists:
// short without terminal punctuation → short-form; long or multi-sentence →
// body; otherwise title.
type HeuristicRule struct{}

// Apply always matches; it is the chain terminator.
func (HeuristicRule) Apply(u *document.Unit) (xlate.ContentRole, bool) {
	text := strings.TrimSpace(document.PlainText(u.Source))
	runes := []rune(text)

	if len(runes) <= shortFormMaxRunes && !endsWithTerminal(runes) {
		return xlate.RoleShortForm, true
	}
	if len(runes) > shortFormMaxRunes*3 || sentenceCount(text) > 1 {
		return xlate.RoleBody, true
	}
	return xlate.RoleTitle, true
}

func endsWithTerminal(runes []rune) bool {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			continue
		}
		switch runes[i] {
		case '.', '!', '?', '…', '。', '！', '？':
			return true
		}
		return false
	}
	return false
}

func sentenceCount(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			n++
		}
	}
	return n
}
