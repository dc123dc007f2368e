package quality

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/ZaguanLabs/xlate"
	"github.com/ZaguanLabs/xlate/document"
)

// DefaultThreshold is the minimum register score for a unit to pass.
const DefaultThreshold = 0.8

// RegisterScorer evaluates how well a translated text matches the requested
// register. Implementations may delegate to an external capability; the
// validator falls back to a local heuristic when none is configured.
type RegisterScorer interface {
	Score(ctx context.Context, text, targetLang string, style xlate.TranslationStyle) (float64, error)
}

// Validator checks translated units for marker preservation and register
// compliance, keeping the report history per unit.
type Validator struct {
	threshold float64
	scorer    RegisterScorer

	mu      sync.Mutex
	history map[string][]*Report
}

// Option configures a Validator.
type Option func(*Validator)

// WithThreshold sets the minimum register score for a pass.
func WithThreshold(t float64) Option {
	return func(v *Validator) {
		v.threshold = t
	}
}

// WithRegisterScorer delegates register scoring to an external implementation.
func WithRegisterScorer(s RegisterScorer) Option {
	return func(v *Validator) {
		v.scorer = s
	}
}

// NewValidator creates a validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		threshold: DefaultThreshold,
		history:   make(map[string][]*Report),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks a translated unit. The structural check is a hard gate: a
// marker mismatch fails the unit regardless of register score. The returned
// report is appended to the unit's history.
func (v *Validator) Validate(ctx context.Context, unit *document.Unit, style xlate.TranslationStyle, targetLang string) (*Report, error) {
	report := &Report{
		UnitID:    unit.ID,
		CreatedAt: time.Now().UTC(),
	}

	report.Issues = MarkerIssues(unit.Source, unit.Target)
	report.StructuralPass = len(report.Issues) == 0

	score, err := v.registerScore(ctx, unit.Target, targetLang, style)
	if err != nil {
		return nil, err
	}
	report.RegisterScore = score
	if score < v.threshold {
		report.Issues = append(report.Issues,
			fmt.Sprintf("register score %.2f below threshold %.2f", score, v.threshold))
	}

	report.Pass = report.StructuralPass && score >= v.threshold

	v.mu.Lock()
	report.Attempt = len(v.history[unit.ID]) + 1
	v.history[unit.ID] = append(v.history[unit.ID], report)
	v.mu.Unlock()

	return report, nil
}

// History returns all reports recorded for a unit, oldest first.
func (v *Validator) History(unitID string) []*Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*Report(nil), v.history[unitID]...)
}

// StructuralError converts a failed report into the error form carried by
// the batch report. Returns nil if the structural check passed.
func StructuralError(r *Report) error {
	if r.StructuralPass {
		return nil
	}
	return &xlate.StructuralIntegrityError{UnitID: r.UnitID, Issues: r.Issues}
}

// MarkerIssues verifies that the ordered marker sequence of the target
// equals that of the source. Every deviation becomes one issue; an empty
// result means the target is structurally sound.
func MarkerIssues(source, target string) []string {
	src := document.Markers(source)
	tgt := document.Markers(target)

	var issues []string
	n := len(src)
	if len(tgt) < n {
		n = len(tgt)
	}

	for i := 0; i < n; i++ {
		if src[i].Literal != tgt[i].Literal {
			issues = append(issues, fmt.Sprintf(
				"marker %d changed: want %s, got %s", i, src[i].Literal, tgt[i].Literal))
		}
	}
	for i := n; i < len(src); i++ {
		issues = append(issues, fmt.Sprintf("marker dropped: %s", src[i].Literal))
	}
	for i := n; i < len(tgt); i++ {
		issues = append(issues, fmt.Sprintf("marker added: %s", tgt[i].Literal))
	}

	return issues
}

func (v *Validator) registerScore(ctx context.Context, target, targetLang string, style xlate.TranslationStyle) (float64, error) {
	text := stripMarkup(target)
	if strings.TrimSpace(text) == "" {
		return 1, nil
	}

	if v.scorer != nil {
		return v.scorer.Score(ctx, text, targetLang, style)
	}
	return heuristicScore(text, style), nil
}

// stripMarkup removes inline markup so only visible text feeds the register
// heuristic. Falls back to the raw text if the fragment does not parse.
func stripMarkup(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return doc.Text()
}

// heuristicScore is a cheap local register check. It looks for surface cues
// that clash with the requested style and deducts per occurrence. It is
// deliberately lenient: only clear mismatches pull a unit below the default
// threshold.
func heuristicScore(text string, style xlate.TranslationStyle) float64 {
	score := 1.0

	exclaims := strings.Count(text, "!")
	ellipses := strings.Count(text, "...")
	caps := countShoutedWords(text)
	emoji := containsEmoji(text)

	switch style {
	case xlate.StyleFormal, xlate.StyleTechnical:
		score -= 0.15 * float64(exclaims)
		score -= 0.1 * float64(ellipses)
		score -= 0.1 * float64(caps)
		if emoji {
			score -= 0.3
		}
	case xlate.StyleNeutral:
		if exclaims > 1 {
			score -= 0.1 * float64(exclaims-1)
		}
		score -= 0.1 * float64(caps)
		if emoji {
			score -= 0.2
		}
	case xlate.StyleCasual, xlate.StyleMarketing:
		// Expressive punctuation is fine here; only heavy shouting reads off.
		if caps > 2 {
			score -= 0.1 * float64(caps-2)
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// countShoutedWords counts words of three or more letters written fully in
// upper case. Short acronyms pass.
func countShoutedWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		letters := 0
		upper := true
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
				if !unicode.IsUpper(r) {
					upper = false
				}
			}
		}
		if letters >= 4 && upper {
			count++
		}
	}
	return count
}

func containsEmoji(text string) bool {
	for _, r := range text {
		if r >= 0x1F300 && r <= 0x1FAFF {
			return true
		}
	}
	return false
}
