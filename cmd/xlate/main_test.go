package main

import (
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	outputDir = ""
	got := outputPath(filepath.Join("exports", "post-42.xlf"), "en_US")
	want := filepath.Join("exports", "post-42.en.xlf")
	if got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
}

func TestOutputPath_OverrideDir(t *testing.T) {
	outputDir = "out"
	defer func() { outputDir = "" }()

	got := outputPath(filepath.Join("exports", "post-42.xlf"), "de")
	want := filepath.Join("out", "post-42.de.xlf")
	if got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
}

func TestBuildMemory_UnknownBackend(t *testing.T) {
	memoryBackend = "bogus"
	defer func() { memoryBackend = "inmem" }()

	if _, _, err := buildMemory(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
