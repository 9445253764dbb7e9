package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/healthinsight/disease-insight-api/config"
	"github.com/healthinsight/disease-insight-api/diseaseparser"
	"github.com/healthinsight/disease-insight-api/diseaseparser/entities"
	"github.com/healthinsight/disease-insight-api/interfaces"
	"github.com/healthinsight/disease-insight-api/logging"
	"github.com/healthinsight/disease-insight-api/metrics"
)

// Compile-time check to ensure Gateway implements DiseaseAnalyzer
var _ interfaces.DiseaseAnalyzer = (*Gateway)(nil)

// Gateway runs the full analysis pipeline for one disease name: cache
// lookup, model call with bounded retries and exponential backoff,
// JSON extraction, normalization, cache fill.
type Gateway struct {
	provider    Provider
	cache       interfaces.ResponseCache
	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	maxTokens   int
	temperature float64
}

// New creates a gateway with injected provider and cache.
func New(provider Provider, responseCache interfaces.ResponseCache, cfg *config.Config) *Gateway {
	return &Gateway{
		provider:    provider,
		cache:       responseCache,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		timeout:     cfg.RequestTimeout,
		maxTokens:   cfg.MaxOutputTokens,
		temperature: cfg.Temperature,
	}
}

// Provider exposes the underlying provider for health reporting.
func (g *Gateway) Provider() Provider {
	return g.provider
}

// Analyze fetches and normalizes a disease description. It never panics
// and never returns an error: a failed analysis comes back with OK=false
// and the last error text in Diagnostic. A non-JSON model response counts
// as a failed attempt and is retried like a transport error.
func (g *Gateway) Analyze(ctx context.Context, disease string) entities.AnalysisResult {
	disease = strings.TrimSpace(disease)
	if disease == "" {
		return entities.AnalysisResult{Record: entities.EmptyRecord(), Diagnostic: "empty disease name"}
	}

	if record, raw, ok := g.cache.Get(disease, g.provider.Name()); ok {
		metrics.CacheHitsTotal.Inc()
		return entities.AnalysisResult{OK: true, Record: record, Raw: raw}
	}
	metrics.CacheMissesTotal.Inc()

	prompt := BuildPrompt(disease, g.maxTokens, g.temperature)

	lastErr := "no attempts made"
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		start := time.Now()
		raw, err := g.complete(ctx, prompt)
		metrics.InsightRequestDuration.WithLabelValues(g.provider.Name()).Observe(time.Since(start).Seconds())

		if err == nil {
			obj := diseaseparser.ExtractJSON(raw)
			if len(obj) > 0 {
				record := diseaseparser.Normalize(obj)
				g.cache.Put(disease, g.provider.Name(), record, raw)
				metrics.InsightRequestsTotal.WithLabelValues(g.provider.Name(), "success").Inc()
				return entities.AnalysisResult{OK: true, Record: record, Raw: raw}
			}
			lastErr = "invalid JSON from model"
		} else {
			lastErr = err.Error()
		}

		logging.Warn("Model request failed",
			"disease", disease,
			"provider", g.provider.Name(),
			"attempt", attempt,
			"max_attempts", g.maxAttempts,
			"error", lastErr,
		)

		if attempt < g.maxAttempts {
			if !g.waitBackoff(ctx, attempt) {
				lastErr = fmt.Sprintf("%s (canceled: %v)", lastErr, ctx.Err())
				break
			}
		}
	}

	metrics.InsightRequestsTotal.WithLabelValues(g.provider.Name(), "failure").Inc()
	return entities.AnalysisResult{Record: entities.EmptyRecord(), Diagnostic: lastErr}
}

// ClearCache drops all memoized results.
func (g *Gateway) ClearCache() int {
	n := g.cache.Clear()
	logging.Info("Response cache cleared", "entries_removed", n)
	return n
}

// complete runs one provider call under the per-attempt timeout.
func (g *Gateway) complete(ctx context.Context, prompt Prompt) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.provider.Complete(attemptCtx, prompt)
}

// waitBackoff sleeps for backoffBase doubled per completed attempt
// (0.5s, 1s, 2s with the default base). Returns false if the context
// was canceled while waiting.
func (g *Gateway) waitBackoff(ctx context.Context, attempt int) bool {
	delay := g.backoffBase << (attempt - 1)
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
