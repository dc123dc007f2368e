// Package memory implements the translation memory: a shared, append-mostly
// mapping from normalized source fragments to prior accepted translations,
// keyed per (fingerprint, target language, content role).
//
// The memory outlives any single document. Reads never block; writes to the
// same key are serialized so concurrent translation of identical fragments
// cannot race into divergent accepted entries. An accepted translation never
// silently overwrites an existing entry: reinforcement bumps the usage
// count, and replacement requires the explicit Overwrite path.
package memory

import (
	"context"

	"github.com/ZaguanLabs/xlate"
)

// DefaultFuzzyThreshold is the minimum similarity for fuzzy candidates.
const DefaultFuzzyThreshold = 0.85

// Entry is one accepted translation.
type Entry struct {
	Fingerprint string            `json:"fingerprint"`
	Normalized  string            `json:"normalized"`
	TargetLang  string            `json:"target_lang"`
	Role        xlate.ContentRole `json:"role"`
	Target      string            `json:"target"`
	Score       float64           `json:"score"`
	UsageCount  int               `json:"usage_count"`
}

// Key returns the entry's memory key.
func (e *Entry) Key() string {
	return xlate.MemoryKey(e.Fingerprint, e.TargetLang, e.Role)
}

// Candidate is a fuzzy lookup result, ranked by similarity.
type Candidate struct {
	Entry      Entry
	Similarity float64
}

// Memory is the interface shared by all translation-memory backends.
type Memory interface {
	// Lookup returns the exact entry for the fragment when one exists,
	// otherwise fuzzy candidates with similarity at or above the backend's
	// threshold, ranked descending. Both may be empty.
	Lookup(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole) (*Entry, []Candidate, error)

	// Record stores a newly accepted translation, or reinforces the existing
	// entry for the key by bumping its usage count. It never replaces an
	// existing accepted target.
	Record(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error

	// Overwrite replaces the accepted target for a key. This is the explicit
	// operator-confirmed write path; pipelines must not call it.
	Overwrite(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error
}

// Enumerable is implemented by backends that can list their entries,
// enabling export and cross-backend migration.
type Enumerable interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// rankCandidates filters entries for one (language, role) partition against
// a normalized query and returns candidates sorted by descending similarity.
func rankCandidates(entries []Entry, normalized string, threshold float64) []Candidate {
	var out []Candidate
	for _, e := range entries {
		sim := Similarity(normalized, e.Normalized)
		if sim >= threshold {
			out = append(out, Candidate{Entry: e, Similarity: sim})
		}
	}
	// Insertion sort: candidate lists are tiny.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Similarity > out[j-1].Similarity; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
