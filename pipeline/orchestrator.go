// Package pipeline drives translation of parsed documents: per-unit
// orchestration against the translation memory and provider, a bounded
// worker pool with a per-document join barrier, and the batch runner that
// produces rebuilt documents, linkage records, and the batch report.
package pipeline

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/xlate"
	"github.com/ZaguanLabs/xlate/document"
	"github.com/ZaguanLabs/xlate/memory"
	"github.com/ZaguanLabs/xlate/quality"
)

// DefaultAutoAdoptThreshold is the fuzzy similarity above which a memory
// candidate is adopted without a provider call.
const DefaultAutoAdoptThreshold = 0.95

// DefaultConcurrency bounds parallel unit translation within a document.
const DefaultConcurrency = 4

// UnitState tracks a unit through one orchestration pass.
type UnitState string

const (
	StatePending   UnitState = "pending"
	StateInFlight  UnitState = "in-flight"
	StateRetrying  UnitState = "retrying"
	StateSucceeded UnitState = "succeeded"
	StateFailed    UnitState = "failed"
)

// Result is the outcome of orchestrating one unit.
type Result struct {
	UnitID     string
	State      UnitState
	Status     xlate.UnitStatus
	FromMemory bool
	Report     *quality.Report
	Err        error
}

// Orchestrator translates units: memory first, provider as fallback, with
// marker protection, retries, and optional validation.
type Orchestrator struct {
	provider  xlate.Provider
	memory    memory.Memory
	validator *quality.Validator

	concurrency int
	autoAdopt   float64
	retry       xlate.RetryConfig
	styles      map[xlate.ContentRole]xlate.TranslationStyle
	glossary    map[string]string
	excluded    []string

	mu     sync.Mutex
	states map[string]UnitState
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency bounds parallel unit translation.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithAutoAdoptThreshold sets the fuzzy similarity for silent adoption.
func WithAutoAdoptThreshold(t float64) Option {
	return func(o *Orchestrator) {
		o.autoAdopt = t
	}
}

// WithRetryConfig overrides the provider retry policy.
func WithRetryConfig(cfg xlate.RetryConfig) Option {
	return func(o *Orchestrator) {
		o.retry = cfg
	}
}

// WithValidator enables quality validation after provider translation.
// Passing units are promoted to validated; failing units are flagged and
// excluded from memory acceptance.
func WithValidator(v *quality.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithStyles overrides the role to style mapping.
func WithStyles(styles map[xlate.ContentRole]xlate.TranslationStyle) Option {
	return func(o *Orchestrator) {
		o.styles = styles
	}
}

// WithGlossary sets preferred translations passed to the provider.
func WithGlossary(glossary map[string]string) Option {
	return func(o *Orchestrator) {
		o.glossary = glossary
	}
}

// WithExcludedTerms sets terms the provider must leave untranslated.
func WithExcludedTerms(terms []string) Option {
	return func(o *Orchestrator) {
		o.excluded = terms
	}
}

// NewOrchestrator creates an orchestrator over a provider and a translation
// memory.
func NewOrchestrator(provider xlate.Provider, mem memory.Memory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:    provider,
		memory:      mem,
		concurrency: DefaultConcurrency,
		autoAdopt:   DefaultAutoAdoptThreshold,
		retry:       xlate.DefaultRetryConfig(),
		styles:      xlate.RoleStyles,
		states:      make(map[string]UnitState),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) styleFor(role xlate.ContentRole) xlate.TranslationStyle {
	if s, ok := o.styles[role]; ok {
		return s
	}
	return xlate.StyleFor(role)
}

func (o *Orchestrator) setState(unitID string, s UnitState) {
	o.mu.Lock()
	o.states[unitID] = s
	o.mu.Unlock()
}

// State returns the last observed orchestration state of a unit.
func (o *Orchestrator) State(unitID string) UnitState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.states[unitID]; ok {
		return s
	}
	return StatePending
}

// TranslateUnit runs the per-unit flow: exact memory hit, fuzzy auto-adopt,
// or provider call with markers protected and retries applied. A unit whose
// retries are exhausted stays untranslated and reports
// TranslationUnavailableError; the caller's batch continues.
func (o *Orchestrator) TranslateUnit(ctx context.Context, u *document.Unit, sourceLang, targetLang string) Result {
	res := Result{UnitID: u.ID}
	o.setState(u.ID, StateInFlight)

	exact, fuzzy, err := o.memory.Lookup(ctx, u.Source, targetLang, u.Role)
	if err != nil {
		// A memory outage degrades to provider-only operation.
		exact, fuzzy = nil, nil
	}

	if exact != nil {
		return o.adopt(ctx, u, targetLang, exact.Target, exact.Score, &res)
	}
	if len(fuzzy) > 0 && fuzzy[0].Similarity >= o.autoAdopt {
		return o.adopt(ctx, u, targetLang, fuzzy[0].Entry.Target, fuzzy[0].Similarity, &res)
	}

	protected, literals := document.Protect(u.Source)
	req := xlate.Request{
		Text:           protected,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		Role:           u.Role,
		Style:          o.styleFor(u.Role),
		StyleDirective: xlate.DirectiveFor(u.Role),
		Glossary:       o.glossary,
		ExcludedTerms:  o.excluded,
	}
	if len(fuzzy) > 0 {
		req.ConsistencyHint = fuzzy[0].Entry.Target
	}

	attempts := 0
	translated, err := xlate.WithRetry(ctx, o.retry, func() (string, error) {
		if attempts > 0 {
			o.setState(u.ID, StateRetrying)
		}
		attempts++
		return o.provider.Translate(ctx, req)
	})
	if err != nil {
		u.Status = xlate.StatusUntranslated
		o.setState(u.ID, StateFailed)
		res.State = StateFailed
		res.Status = u.Status
		res.Err = &xlate.TranslationUnavailableError{UnitID: u.ID, Attempts: attempts, Cause: err}
		return res
	}

	u.Target = document.Restore(translated, literals)
	u.Status = xlate.StatusMachineTranslated
	score := 1.0

	if o.validator != nil {
		report, verr := o.validator.Validate(ctx, u, o.styleFor(u.Role), targetLang)
		if verr != nil {
			res.Err = verr
		} else {
			res.Report = report
			if !report.Pass {
				u.Status = xlate.StatusFlagged
				o.setState(u.ID, StateSucceeded)
				res.State = StateSucceeded
				res.Status = u.Status
				res.Err = quality.StructuralError(report)
				return res
			}
			u.Status = xlate.StatusValidated
			score = report.RegisterScore
		}
	}

	// Persist immediately so a crash mid-batch loses no completed work.
	if err := o.memory.Record(ctx, u.Source, targetLang, u.Role, u.Target, score); err != nil {
		res.Err = err
	}

	o.setState(u.ID, StateSucceeded)
	res.State = StateSucceeded
	res.Status = u.Status
	return res
}

// adopt takes a memory target for the unit and reinforces the entry. Memory
// keys normalize marker literals away, so a hit may carry another fragment's
// markup; the stored target's markers are remapped onto this unit's literals
// before the structural gate. A target that still fails the gate is flagged
// and not reinforced.
func (o *Orchestrator) adopt(ctx context.Context, u *document.Unit, targetLang, target string, score float64, res *Result) Result {
	u.Target = remapMarkers(u.Source, target)
	u.Status = xlate.StatusMemoryHit
	res.FromMemory = true

	if issues := quality.MarkerIssues(u.Source, u.Target); len(issues) > 0 {
		u.Status = xlate.StatusFlagged
		o.setState(u.ID, StateSucceeded)
		res.State = StateSucceeded
		res.Status = u.Status
		res.Err = &xlate.StructuralIntegrityError{UnitID: u.ID, Issues: issues}
		return *res
	}

	if err := o.memory.Record(ctx, u.Source, targetLang, u.Role, u.Target, score); err != nil {
		res.Err = err
	}

	o.setState(u.ID, StateSucceeded)
	res.State = StateSucceeded
	res.Status = u.Status
	return *res
}

// remapMarkers rewrites the markers of an adopted target with the source's
// own literals. Marker positions carry over from the stored translation;
// literals do not. A target whose marker count differs from the source is
// returned unchanged for the structural gate to catch.
func remapMarkers(source, target string) string {
	protected, stored := document.Protect(target)
	markers := document.Markers(source)
	if len(stored) == 0 || len(stored) != len(markers) {
		return target
	}

	literals := make([]string, len(markers))
	for i, m := range markers {
		literals[i] = m.Literal
	}
	return document.Restore(protected, literals)
}

// TranslateDocument orchestrates all units of a document through a bounded
// worker pool and returns when every unit has reached a terminal state. This
// is the per-document join barrier: rebuild never observes an in-flight unit.
func (o *Orchestrator) TranslateDocument(ctx context.Context, doc *document.Document) []Result {
	for _, u := range doc.Units {
		o.setState(u.ID, StatePending)
	}

	results := make([]Result, len(doc.Units))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, u := range doc.Units {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u *document.Unit) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.TranslateUnit(ctx, u, doc.SourceLang, doc.TargetLang)
		}(i, u)
	}

	wg.Wait()
	return results
}
