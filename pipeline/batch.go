package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/xlate"
	"github.com/ZaguanLabs/xlate/classify"
	"github.com/ZaguanLabs/xlate/document"
	"github.com/ZaguanLabs/xlate/linkage"
)

// TargetRefFunc maps a source content-item reference to the reference the
// destination platform will hold the translation under.
type TargetRefFunc func(source xlate.ContentRef, targetLang string) xlate.ContentRef

// defaultTargetRef suffixes the item ID with the base target language, the
// convention used by export tooling when no explicit mapping is supplied.
func defaultTargetRef(source xlate.ContentRef, targetLang string) xlate.ContentRef {
	return xlate.ContentRef{
		ItemID: source.ItemID + "-" + xlate.BaseLang(targetLang),
		Field:  source.Field,
	}
}

// DocumentResult is the per-document outcome of a batch run.
type DocumentResult struct {
	Doc     *document.Document
	Output  []byte // rebuilt document; nil when rebuild was rejected
	GroupID string // linkage group of the document's content item, if any
	Results []Result
	Err     error // rebuild or linkage error for this document
}

// Batch runs documents through classification, orchestration, rebuild, and
// linkage registration. Per-document failures are isolated into the report;
// the batch itself never aborts because one document failed.
type Batch struct {
	orchestrator   *Orchestrator
	classifier     *classify.Classifier
	linkage        *linkage.Manager
	targetRef      TargetRefFunc
	partial        bool
	docConcurrency int
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithPartialOutput permits rebuilding documents whose units are not all
// shippable.
func WithPartialOutput() BatchOption {
	return func(b *Batch) {
		b.partial = true
	}
}

// WithLinkage registers rebuilt documents with a linkage manager.
func WithLinkage(m *linkage.Manager) BatchOption {
	return func(b *Batch) {
		b.linkage = m
	}
}

// WithClassifier overrides the default classifier rule chain.
func WithClassifier(c *classify.Classifier) BatchOption {
	return func(b *Batch) {
		b.classifier = c
	}
}

// WithTargetRef overrides how target content-item references are derived.
func WithTargetRef(fn TargetRefFunc) BatchOption {
	return func(b *Batch) {
		b.targetRef = fn
	}
}

// WithDocumentConcurrency bounds how many documents run in parallel.
func WithDocumentConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.docConcurrency = n
		}
	}
}

// NewBatch creates a batch runner over an orchestrator.
func NewBatch(o *Orchestrator, opts ...BatchOption) *Batch {
	b := &Batch{
		orchestrator:   o,
		classifier:     classify.New(),
		targetRef:      defaultTargetRef,
		docConcurrency: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes the documents and returns the batch report together with the
// per-document results, in input order.
func (b *Batch) Run(ctx context.Context, docs []*document.Document) (*Report, []DocumentResult) {
	start := time.Now()

	results := make([]DocumentResult, len(docs))
	sem := make(chan struct{}, b.docConcurrency)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc *document.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = b.runDocument(ctx, doc)
		}(i, doc)
	}
	wg.Wait()

	report := newReport()
	report.Documents = len(docs)
	for _, dr := range results {
		if dr.Output != nil {
			report.Rebuilt++
		}
		for _, res := range dr.Results {
			report.addResult(res)
		}
	}
	report.Duration = time.Since(start)

	return report, results
}

func (b *Batch) runDocument(ctx context.Context, doc *document.Document) DocumentResult {
	dr := DocumentResult{Doc: doc}

	b.classifier.ClassifyAll(doc)
	dr.Results = b.orchestrator.TranslateDocument(ctx, doc)

	output, err := document.Rebuild(doc, document.RebuildOptions{Partial: b.partial})
	if err != nil {
		dr.Err = err
		return dr
	}
	dr.Output = output

	if b.linkage != nil {
		if srcRef := doc.ItemRef(); !srcRef.IsZero() {
			g := b.linkage.Ensure(srcRef, doc.SourceLang)
			dr.GroupID = g.ID
			if err := b.linkage.Register(g.ID, doc.TargetLang, b.targetRef(srcRef, doc.TargetLang)); err != nil {
				dr.Err = err
			}
		}
	}

	return dr
}
