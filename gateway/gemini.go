package gateway

import (
	"context"

	genai "google.golang.org/genai"

	"github.com/healthinsight/disease-insight-api/config"
)

// GeminiProvider implements the Provider interface over the official
// genai SDK. Only the API call lives here; retries and caching are the
// gateway's job.
type GeminiProvider struct {
	cli    *genai.Client
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini provider from configuration.
func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiProvider{
		cli:    cli,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}, nil
}

// Name returns the provider and model identifier
func (g *GeminiProvider) Name() string {
	return "gemini:" + g.model
}

// Available returns true if an API key is configured
func (g *GeminiProvider) Available() bool {
	return g.apiKey != ""
}

// Complete asks for application/json output and returns the first
// candidate's text.
func (g *GeminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if !g.Available() {
		return "", ErrNotConfigured
	}

	full := prompt.System + "\n\n" + prompt.User

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr(float32(prompt.Temperature)),
			MaxOutputTokens:  int32(prompt.MaxTokens),
		},
	)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
