package xlate

import "context"

// Provider is the interface for external translation backends.
// Implementations must return embedded placeholder tokens unmodified.
type Provider interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// Request contains the parameters for a single translation call.
type Request struct {
	Text            string           // source text, markers already protected
	SourceLang      string           // source language code
	TargetLang      string           // target language code
	Role            ContentRole      // content role of the unit
	Style           TranslationStyle // register to translate into
	StyleDirective  string           // role-specific instruction for the backend
	ConsistencyHint string           // prior translation of a similar fragment, if any
	Glossary        map[string]string
	ExcludedTerms   []string
}
