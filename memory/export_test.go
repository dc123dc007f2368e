package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xlate"
)

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewInMemoryStore()

	src.Record(ctx, "Hola Mundo", "en", xlate.RoleTitle, "Hello World", 0.95)
	src.Record(ctx, "Adiós", "de", xlate.RoleBody, "Tschüss", 1)

	var buf bytes.Buffer
	if err := NewExporter(src).Export(ctx, &buf, map[string]string{"project": "demo"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := NewInMemoryStore()
	result, err := NewImporter(dst).Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}
	if result.Metadata["project"] != "demo" {
		t.Errorf("Metadata = %v", result.Metadata)
	}

	// Keys must survive the round trip: the original source text still
	// resolves to an exact hit in the destination store.
	exact, _, err := dst.Lookup(ctx, "Hola Mundo", "en", xlate.RoleTitle)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if exact == nil || exact.Target != "Hello World" {
		t.Fatalf("imported entry not found under original key: %+v", exact)
	}
}

func TestExport_Format(t *testing.T) {
	ctx := context.Background()
	src := NewInMemoryStore()
	src.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hello", 1)

	var buf bytes.Buffer
	if err := NewExporter(src).Export(ctx, &buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if export.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", export.Version)
	}
	if export.ExportedAt == "" {
		t.Error("ExportedAt is empty")
	}
	if len(export.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(export.Entries))
	}
	if export.Entries[0].Fingerprint == "" {
		t.Error("entry fingerprint missing")
	}
}

func TestImport_SkipsIncompleteEntries(t *testing.T) {
	ctx := context.Background()

	payload := `{
		"version": "1.0",
		"exported_at": "2026-01-01T00:00:00Z",
		"entries": [
			{"fingerprint": "abc", "normalized": "hola", "target_lang": "en", "role": "title", "target": "Hello", "score": 1, "usage_count": 1},
			{"fingerprint": "def", "normalized": "", "target_lang": "en", "role": "title", "target": "Orphan", "score": 1, "usage_count": 1},
			{"fingerprint": "ghi", "normalized": "adios", "target_lang": "en", "role": "title", "target": "", "score": 1, "usage_count": 1}
		]
	}`

	dst := NewInMemoryStore()
	result, err := NewImporter(dst).Import(ctx, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	dst := NewInMemoryStore()
	if _, err := NewImporter(dst).Import(context.Background(), strings.NewReader("{broken")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestExportImport_FileRoundTripAcrossBackends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.json")

	src := NewInMemoryStore()
	src.Record(ctx, "Hola", "en", xlate.RoleTitle, "Hello", 1)

	if err := NewExporter(src).ExportToFile(ctx, path, nil); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	dst, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tm.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer dst.Close()

	result, err := NewImporter(dst).ImportFromFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}

	exact, _, err := dst.Lookup(ctx, "Hola", "en", xlate.RoleTitle)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if exact == nil || exact.Target != "Hello" {
		t.Fatalf("entry not found in sqlite after import: %+v", exact)
	}
}
