package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportFormat is the JSON structure for memory export/import, used to carry
// the translation memory between runs or between backends.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []Entry           `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Exporter writes a memory's entries as JSON.
type Exporter struct {
	memory Enumerable
}

// NewExporter creates a memory exporter. The backend must be Enumerable.
func NewExporter(memory Enumerable) *Exporter {
	return &Exporter{memory: memory}
}

// Export writes the memory contents to a writer in JSON format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) error {
	entries, err := e.memory.Entries(ctx)
	if err != nil {
		return fmt.Errorf("getting memory entries: %w", err)
	}

	export := ExportFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the memory to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, metadata)
}

// Importer loads exported entries into a memory backend.
type Importer struct {
	memory Memory
}

// NewImporter creates a memory importer.
func NewImporter(memory Memory) *Importer {
	return &Importer{memory: memory}
}

// ImportResult summarizes an import operation.
type ImportResult struct {
	Version  string
	Imported int
	Skipped  int
	Metadata map[string]string
}

// Import reads exported entries from a reader and loads them. Entries whose
// key already exists are reinforced, not replaced, per the Record contract;
// entries without a target are skipped.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, e := range export.Entries {
		if e.Target == "" || e.Normalized == "" {
			result.Skipped++
			continue
		}
		// The normalized text is its own fingerprint input, so importing
		// through Record keeps keys identical across backends.
		if err := i.memory.Record(ctx, e.Normalized, e.TargetLang, e.Role, e.Target, e.Score); err != nil {
			return result, err
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports memory entries from a file.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}
