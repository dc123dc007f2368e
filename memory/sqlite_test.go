package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZaguanLabs/xlate"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tm.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RecordAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.Record(ctx, "Hola Mundo", "en", xlate.RoleTitle, "Hello World", 0.95); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	exact, fuzzy, err := s.Lookup(ctx, "hola  mundo", "en", xlate.RoleTitle)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if exact == nil {
		t.Fatal("expected exact match for normalized variant")
	}
	if exact.Target != "Hello World" {
		t.Errorf("Target = %q, want Hello World", exact.Target)
	}
	if exact.UsageCount != 1 {
		t.Errorf("UsageCount = %d, want 1", exact.UsageCount)
	}
	if fuzzy != nil {
		t.Errorf("exact hit should carry no fuzzy candidates")
	}
}

func TestSQLiteStore_RecordReinforcesWithoutOverwriting(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	s.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hello", 0.9)
	s.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hi there", 0.99)

	exact, _, err := s.Lookup(ctx, "Hola", "en", xlate.RoleTitle)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if exact == nil {
		t.Fatal("expected entry")
	}
	if exact.Target != "Hello" {
		t.Errorf("Record overwrote accepted target: %q", exact.Target)
	}
	if exact.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", exact.UsageCount)
	}
}

func TestSQLiteStore_OverwriteReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	s.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hello", 0.9)
	if err := s.Overwrite(ctx, "Hola", "en", xlate.RoleTitle, "Hi", 1.0); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	exact, _, _ := s.Lookup(ctx, "Hola", "en", xlate.RoleTitle)
	if exact == nil || exact.Target != "Hi" {
		t.Fatalf("Overwrite did not replace target: %+v", exact)
	}
	if exact.UsageCount != 1 {
		t.Errorf("UsageCount = %d, want reset to 1", exact.UsageCount)
	}
}

func TestSQLiteStore_FuzzyCandidates(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	s.Record(ctx, "Este es un contenido largo.", "en", xlate.RoleBody, "This is a long content.", 1)
	s.Record(ctx, "Algo totalmente distinto aquí", "en", xlate.RoleBody, "Something else", 1)

	exact, fuzzy, err := s.Lookup(ctx, "Este es un contenido muy largo.", "en", xlate.RoleBody)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if exact != nil {
		t.Fatal("variant should not be an exact hit")
	}
	if len(fuzzy) != 1 {
		t.Fatalf("expected 1 fuzzy candidate, got %d", len(fuzzy))
	}
	if fuzzy[0].Entry.Target != "This is a long content." {
		t.Errorf("candidate target = %q", fuzzy[0].Entry.Target)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tm.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	s.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hello", 1)
	s.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	exact, _, err := s2.Lookup(ctx, "Hola", "en", xlate.RoleTitle)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if exact == nil || exact.Target != "Hello" {
		t.Fatalf("entry did not survive reopen: %+v", exact)
	}
}

func TestSQLiteStore_Entries(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	s.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hello", 1)
	s.Record(ctx, "Adiós", "de", xlate.RoleBody, "Tschüss", 1)

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
}
