package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/xlate"
)

// OpenAIProvider implements Provider using OpenAI's chat API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key (uses OPENAI_API_KEY env var if empty)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a single text fragment using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req Request) (string, error) {
	if req.Text == "" {
		return "", nil
	}

	systemPrompt := p.buildSystemPrompt(req)
	userMessage := p.buildUserMessage(req)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &xlate.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &xlate.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(req Request) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}

	targetName := xlate.GetLanguageName(req.TargetLang)
	styleDesc := xlate.GetStyleDescription(req.Style)

	roleText := req.StyleDirective
	if roleText == "" {
		roleText = xlate.DirectiveFor(req.Role)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate content to %s with the fluency and nuance of a highly educated native speaker.

# Content
%s

# Register
%s

# Task
Translate the provided text into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound completely natural to a native speaker.
- **Vocabulary**: Use precise, culturally relevant terminology. Avoid awkward "translationese" or robotic phrasing.
- **Tone**: Maintain the original intent but adapt the wording to fit the target culture's expectations.
- **Idioms**: Never translate idioms literally. Replace source-language idioms with natural %s equivalents.
- **Protected Tokens**: The text contains tokens of the form [PH0], [PH1], ... standing in for markup and variables. Keep every token exactly as written, in the order the translated sentence requires, and never add or drop one.
- **Formatting**: Preserve meaningful whitespace (leading/trailing spaces, multiple spaces, newlines). Use idiomatic punctuation for the target language.`,
		targetName, roleText, styleDesc, targetName, targetName)

	if req.ConsistencyHint != "" {
		prompt += fmt.Sprintf("\n\n# Consistency\nA nearly identical fragment was previously translated as:\n%q\nStay consistent with its terminology and phrasing where the source allows.", req.ConsistencyHint)
	}

	if len(req.Glossary) > 0 {
		prompt += "\n\n# Glossary\nWhen you encounter these phrases, prefer these translations (unless context demands otherwise):"
		for source, target := range req.Glossary {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", source, target)
		}
	}

	prompt += fmt.Sprintf("\n\n# Quality Check\nAfter translating, verify the result sounds like native %s and not a calque. If any phrase sounds like a literal translation, rewrite it naturally.", targetName)

	prompt += `

# Format
Return a valid JSON object with a single key "translation" containing the translated string.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.`

	if len(req.ExcludedTerms) > 0 {
		terms := strings.Join(req.ExcludedTerms, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s", terms)
	}

	return prompt
}

func (p *OpenAIProvider) buildUserMessage(req Request) string {
	data, _ := json.Marshal(map[string]string{"text": req.Text})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string) (string, error) {
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translation, ok := objResult["translation"]; ok {
			if s, ok := translation.(string); ok {
				return s, nil
			}
		}

		// Fallback: find first string value
		for _, v := range objResult {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
	}

	// Some models ignore the format instruction and return a bare string
	var strResult string
	if err := json.Unmarshal([]byte(content), &strResult); err == nil {
		return strResult, nil
	}

	return "", &xlate.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := err.Error()
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
