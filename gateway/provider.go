// Package gateway builds prompts for external text-generation services,
// invokes them with bounded retries, and turns their output into
// normalized disease records.
package gateway

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a provider has no credential
var ErrNotConfigured = errors.New("model provider not configured")

// ErrEmptyResponse is returned when the service answered without any text
var ErrEmptyResponse = errors.New("empty response from model")

// Prompt is one fully-built model request: fixed system instructions plus
// the user instruction embedding the disease name and target schema.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Provider is implemented by one adapter per external service. An adapter
// is the only place allowed to know the service's wire shape; everything
// downstream consumes plain response text.
type Provider interface {
	// Name returns the provider and model identifier, e.g. "openai:gpt-4o-mini"
	Name() string

	// Available returns true if the provider is properly configured
	Available() bool

	// Complete sends one request and returns the raw response text
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
