package provider

import (
	"context"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/ZaguanLabs/xlate"
)

// GoogleProvider implements Provider using the Google Cloud Translation API.
// Unlike the OpenAI backend it takes no style instructions, so the role
// directive and register are ignored; protected tokens survive because the
// API passes bracketed ASCII through untranslated.
type GoogleProvider struct {
	client *translate.Client
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	APIKey          string // API key (optional if using credentials)
	CredentialsFile string // Path to a service account JSON file (optional)
}

// NewGoogleProvider creates a Google Cloud Translation provider.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	opts := []option.ClientOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, &xlate.ProviderError{Message: "failed to create Google client", Cause: err}
	}

	return &GoogleProvider{client: client}, nil
}

// Translate translates a single text fragment.
func (p *GoogleProvider) Translate(ctx context.Context, req Request) (string, error) {
	if req.Text == "" {
		return "", nil
	}

	target, err := language.Parse(xlate.BaseLang(req.TargetLang))
	if err != nil {
		return "", &xlate.ProviderError{Message: "invalid target language", Cause: err}
	}

	var opts *translate.Options
	if req.SourceLang != "" {
		if source, err := language.Parse(xlate.BaseLang(req.SourceLang)); err == nil {
			opts = &translate.Options{Source: source}
		}
	}

	translations, err := p.client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return "", &xlate.ProviderError{
			Message:   "Google API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(translations) == 0 {
		return "", &xlate.ProviderError{
			Message:   "no translation returned",
			Retryable: true,
		}
	}

	return translations[0].Text, nil
}

// Close releases the underlying client.
func (p *GoogleProvider) Close() error {
	return p.client.Close()
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
