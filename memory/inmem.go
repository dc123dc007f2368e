package memory

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/xlate"
)

// InMemoryStore is a thread-safe in-process translation memory. It is the
// default backend for single-run batches; use the sqlite or redis backend
// when memory must persist between runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	// partition index: (lang, role) → keys, for fuzzy scans
	partitions map[string][]string

	writes    keyLocks
	threshold float64
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithFuzzyThreshold overrides the minimum similarity for fuzzy candidates.
func WithFuzzyThreshold(t float64) InMemoryOption {
	return func(s *InMemoryStore) {
		s.threshold = t
	}
}

// NewInMemoryStore creates an empty in-process translation memory.
func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries:    make(map[string]*Entry),
		partitions: make(map[string][]string),
		threshold:  DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func partitionKey(targetLang string, role xlate.ContentRole) string {
	return targetLang + ":" + string(role)
}

// Lookup implements Memory.
func (s *InMemoryStore) Lookup(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole) (*Entry, []Candidate, error) {
	normalized := xlate.Normalize(sourceText)
	key := xlate.MemoryKey(xlate.Fingerprint(sourceText), targetLang, role)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		cp := *e
		return &cp, nil, nil
	}

	var partition []Entry
	for _, k := range s.partitions[partitionKey(targetLang, role)] {
		if e, ok := s.entries[k]; ok {
			partition = append(partition, *e)
		}
	}
	return nil, rankCandidates(partition, normalized, s.threshold), nil
}

// Record implements Memory.
func (s *InMemoryStore) Record(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error {
	fp := xlate.Fingerprint(sourceText)
	key := xlate.MemoryKey(fp, targetLang, role)

	lock := s.writes.lock(key)
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.UsageCount++
		return nil
	}

	s.entries[key] = &Entry{
		Fingerprint: fp,
		Normalized:  xlate.Normalize(sourceText),
		TargetLang:  targetLang,
		Role:        role,
		Target:      targetText,
		Score:       score,
		UsageCount:  1,
	}
	pk := partitionKey(targetLang, role)
	s.partitions[pk] = append(s.partitions[pk], key)
	return nil
}

// Overwrite implements Memory.
func (s *InMemoryStore) Overwrite(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error {
	fp := xlate.Fingerprint(sourceText)
	key := xlate.MemoryKey(fp, targetLang, role)

	lock := s.writes.lock(key)
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.Target = targetText
		e.Score = score
		e.UsageCount = 1
		return nil
	}

	s.entries[key] = &Entry{
		Fingerprint: fp,
		Normalized:  xlate.Normalize(sourceText),
		TargetLang:  targetLang,
		Role:        role,
		Target:      targetText,
		Score:       score,
		UsageCount:  1,
	}
	pk := partitionKey(targetLang, role)
	s.partitions[pk] = append(s.partitions[pk], key)
	return nil
}

// Entries implements Enumerable.
func (s *InMemoryStore) Entries(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out, nil
}

// Len returns the number of entries.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Verify interfaces
var (
	_ Memory     = (*InMemoryStore)(nil)
	_ Enumerable = (*InMemoryStore)(nil)
)
