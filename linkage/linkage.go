// Package linkage maintains the cross-language identity of content items: one
// stable group per logical item, mapping each produced language to the
// content-item reference holding its translation.
package linkage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ZaguanLabs/xlate"
)

// groupNamespace seeds the deterministic group IDs. Same source reference,
// same group, across runs and across machines.
var groupNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("xlate.zaguanlabs.com/group"))

// Group is the cross-language identity of one logical content item. The
// source slot is immutable once set; each language holds at most one
// reference.
type Group struct {
	ID         string
	SourceRef  xlate.ContentRef
	SourceLang string

	mu      sync.RWMutex
	targets map[string]xlate.ContentRef
}

// Targets returns a copy of the language to reference mapping, source
// language included.
func (g *Group) Targets() map[string]xlate.ContentRef {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string]xlate.ContentRef, len(g.targets)+1)
	for lang, ref := range g.targets {
		out[lang] = ref
	}
	out[g.SourceLang] = g.SourceRef
	return out
}

// Ref returns the reference registered for a language, if any.
func (g *Group) Ref(lang string) (xlate.ContentRef, bool) {
	if lang == g.SourceLang {
		return g.SourceRef, true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	ref, ok := g.targets[lang]
	return ref, ok
}

// Languages returns the language codes present in a group, source first,
// targets sorted.
func (g *Group) Languages() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	langs := make([]string, 0, len(g.targets))
	for lang := range g.targets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return append([]string{g.SourceLang}, langs...)
}

func (g *Group) register(lang string, ref xlate.ContentRef) error {
	if lang == g.SourceLang {
		if ref == g.SourceRef {
			return nil
		}
		return &xlate.GroupConflictError{
			GroupID:  g.ID,
			Language: lang,
			Existing: g.SourceRef,
			Incoming: ref,
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.targets[lang]; ok {
		if existing == ref {
			return nil
		}
		return &xlate.GroupConflictError{
			GroupID:  g.ID,
			Language: lang,
			Existing: existing,
			Incoming: ref,
		}
	}

	g.targets[lang] = ref
	return nil
}

// Manager owns the group table. Safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	groups map[string]*Group
	order  []string
}

// NewManager creates an empty linkage manager.
func NewManager() *Manager {
	return &Manager{groups: make(map[string]*Group)}
}

// GroupFor derives the group identifier for a source content-item reference.
// The derivation is a UUIDv5 over a fixed namespace, so the same reference
// always yields the same identifier.
func GroupFor(sourceRef xlate.ContentRef) string {
	return uuid.NewSHA1(groupNamespace, []byte(sourceRef.Key())).String()
}

// Ensure creates the group for a source reference if it does not exist yet
// and returns it. The source slot is set on creation and never moves.
func (m *Manager) Ensure(sourceRef xlate.ContentRef, sourceLang string) *Group {
	id := GroupFor(sourceRef)

	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.groups[id]; ok {
		return g
	}

	g := &Group{
		ID:         id,
		SourceRef:  sourceRef,
		SourceLang: sourceLang,
		targets:    make(map[string]xlate.ContentRef),
	}
	m.groups[id] = g
	m.order = append(m.order, id)
	return g
}

// Register records the content-item reference produced for a language under
// a group. Re-registering the same reference is a no-op; a different
// reference in an occupied slot fails with GroupConflictError, which is how
// accidental duplicate translation runs surface.
func (m *Manager) Register(groupID, lang string, ref xlate.ContentRef) error {
	m.mu.Lock()
	g, ok := m.groups[groupID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown group %s", groupID)
	}
	return g.register(lang, ref)
}

// Group returns a group by identifier.
func (m *Manager) Group(groupID string) (*Group, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	return g, ok
}

// Record is one emitted row of the group table.
type Record struct {
	GroupID    string                      `json:"group_id"`
	SourceRef  xlate.ContentRef            `json:"source_ref"`
	SourceLang string                      `json:"source_lang"`
	Languages  map[string]xlate.ContentRef `json:"languages"`
}

// Table emits the full group table in group creation order, each record's
// language map including the source slot. This is the artifact the
// destination platform's relationship-linking import consumes.
func (m *Manager) Table() []Record {
	m.mu.Lock()
	groups := make([]*Group, 0, len(m.order))
	for _, id := range m.order {
		groups = append(groups, m.groups[id])
	}
	m.mu.Unlock()

	records := make([]Record, 0, len(groups))
	for _, g := range groups {
		records = append(records, Record{
			GroupID:    g.ID,
			SourceRef:  g.SourceRef,
			SourceLang: g.SourceLang,
			Languages:  g.Targets(),
		})
	}
	return records
}
