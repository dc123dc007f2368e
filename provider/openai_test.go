package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xlate"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	req := Request{
		TargetLang:    "es_ES",
		SourceLang:    "en",
		Role:          xlate.RoleTitle,
		ExcludedTerms: []string{"API", "SDK"},
	}

	prompt := p.buildSystemPrompt(req)

	if !strings.Contains(prompt, "Spanish (Spain)") {
		t.Error("Prompt should contain target language name")
	}
	if !strings.Contains(prompt, "headline") {
		t.Error("Prompt should contain the title role directive")
	}
	if !strings.Contains(prompt, "API") || !strings.Contains(prompt, "SDK") {
		t.Error("Prompt should contain excluded terms")
	}
	if !strings.Contains(prompt, "[PH0]") {
		t.Error("Prompt should instruct on protected tokens")
	}
}

func TestBuildSystemPrompt_WithGlossaryAndStyle(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	req := Request{
		TargetLang: "nb_NO",
		SourceLang: "en",
		Glossary: map[string]string{
			"on the fly":   "fortløpende",
			"cutting-edge": "banebrytende",
		},
		Style: xlate.StyleMarketing,
	}

	prompt := p.buildSystemPrompt(req)

	if !strings.Contains(prompt, "on the fly") {
		t.Error("Prompt should contain glossary source term")
	}
	if !strings.Contains(prompt, "fortløpende") {
		t.Error("Prompt should contain glossary target term")
	}
	if !strings.Contains(prompt, "persuasive") {
		t.Error("Prompt should contain marketing style description")
	}
}

func TestBuildSystemPrompt_ConsistencyHint(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	req := Request{
		TargetLang:      "de_DE",
		ConsistencyHint: "Willkommen auf unserer Seite.",
	}

	prompt := p.buildSystemPrompt(req)

	if !strings.Contains(prompt, "Willkommen auf unserer Seite.") {
		t.Error("Prompt should carry the consistency hint")
	}
	if !strings.Contains(prompt, "# Consistency") {
		t.Error("Prompt should have a consistency section")
	}
}

func TestBuildSystemPrompt_ExplicitDirectiveWins(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	req := Request{
		TargetLang:     "es_ES",
		Role:           xlate.RoleTitle,
		StyleDirective: "Custom directive text.",
	}

	prompt := p.buildSystemPrompt(req)

	if !strings.Contains(prompt, "Custom directive text.") {
		t.Error("Prompt should contain the explicit directive")
	}
	if strings.Contains(prompt, "headline") {
		t.Error("Explicit directive should replace the role default")
	}
}

func TestBuildUserMessage(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	msg := p.buildUserMessage(Request{Text: "Hello [PH0]World[PH1]"})

	if msg != `{"text":"Hello [PH0]World[PH1]"}` {
		t.Errorf("Expected JSON object, got: %s", msg)
	}
}

func TestParseResponse_TranslationKey(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`{"translation": "Hola Mundo"}`)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result != "Hola Mundo" {
		t.Errorf("Unexpected translation: %q", result)
	}
}

func TestParseResponse_FallbackStringKey(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	// Some models return with a different key
	result, err := p.parseResponse(`{"result": "Hola"}`)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result != "Hola" {
		t.Errorf("Unexpected translation: %q", result)
	}
}

func TestParseResponse_BareString(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`"Hola"`)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result != "Hola" {
		t.Errorf("Unexpected translation: %q", result)
	}
}

func TestParseResponse_Invalid(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	_, err := p.parseResponse(`{"translation": 42}`)
	if err == nil {
		t.Fatal("Expected error for non-string response")
	}
	var perr *xlate.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ProviderError, got %T", err)
	}
	if perr.Retryable {
		t.Error("Malformed response should not be retryable")
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  string
		want bool
	}{
		{"rate limit exceeded", true},
		{"429 Too Many Requests", true},
		{"connection refused", true},
		{"invalid API key", false},
		{"400 bad request", false},
	}
	for _, tc := range cases {
		if got := isRetryableError(errors.New(tc.err)); got != tc.want {
			t.Errorf("isRetryableError(%q) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()

	result, err := m.Translate(context.Background(), Request{
		Text:       "Hello",
		TargetLang: "es_ES",
	})
	if err != nil {
		t.Fatalf("MockProvider.Translate failed: %v", err)
	}
	if result != "Hola" {
		t.Errorf("Expected 'Hola', got %q", result)
	}

	result, _ = m.Translate(context.Background(), Request{Text: "Unknown text"})
	if result != "[Unknown text]" {
		t.Errorf("Expected '[Unknown text]', got %q", result)
	}

	if m.CallCount() != 2 {
		t.Errorf("Expected CallCount 2, got %d", m.CallCount())
	}
	if m.LastRequest().Text != "Unknown text" {
		t.Errorf("LastRequest = %+v", m.LastRequest())
	}

	m.Reset()
	if m.CallCount() != 0 || m.LastRequest() != nil {
		t.Error("Reset did not clear state")
	}
}
