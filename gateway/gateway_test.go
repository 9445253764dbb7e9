package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/healthinsight/disease-insight-api/cache"
	"github.com/healthinsight/disease-insight-api/config"
)

const malariaJSON = `{
	"name": "Malaria",
	"summary": "A mosquito-borne parasitic disease.",
	"statistics": {
		"total_cases": "1,200,000",
		"incidence_per_100k": 29.4,
		"recovery_rate": "85",
		"mortality_rate": "0.3%"
	},
	"region_breakdown": [],
	"recovery_options": {},
	"medications": [],
	"disclaimer": "Educational only."
}`

// step is one scripted provider response
type step struct {
	text string
	err  error
}

// scriptedProvider returns its steps in order, repeating the last one
type scriptedProvider struct {
	steps []step
	calls int
}

func (p *scriptedProvider) Name() string    { return "fake:test-model" }
func (p *scriptedProvider) Available() bool { return true }

func (p *scriptedProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	i := p.calls
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	p.calls++
	return p.steps[i].text, p.steps[i].err
}

func testConfig() *config.Config {
	return &config.Config{
		MaxAttempts:     3,
		BackoffBase:     time.Millisecond,
		RequestTimeout:  time.Second,
		MaxOutputTokens: 1200,
		Temperature:     0.2,
		CacheTTL:        time.Minute,
		CacheSize:       16,
	}
}

func newTestGateway(provider Provider) *Gateway {
	return New(provider, cache.New(16, time.Minute), testConfig())
}

func TestAnalyzeSuccess(t *testing.T) {
	provider := &scriptedProvider{steps: []step{{text: malariaJSON}}}
	gw := newTestGateway(provider)

	result := gw.Analyze(context.Background(), "malaria")

	if !result.OK {
		t.Fatalf("Expected OK result, got diagnostic: %s", result.Diagnostic)
	}
	if result.Record.Name != "Malaria" {
		t.Errorf("Expected name Malaria, got %q", result.Record.Name)
	}
	if result.Record.Statistics.TotalCases != 1200000 {
		t.Errorf("Expected total_cases 1200000, got %d", result.Record.Statistics.TotalCases)
	}
	if result.Record.Statistics.RecoveryRate != "85%" {
		t.Errorf("Expected recovery rate 85%%, got %q", result.Record.Statistics.RecoveryRate)
	}
	if result.Raw != malariaJSON {
		t.Error("Expected raw payload to carry the model response")
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls)
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	provider := &scriptedProvider{steps: []step{{text: malariaJSON}}}
	gw := newTestGateway(provider)

	first := gw.Analyze(context.Background(), "Malaria")
	// Case and whitespace variants must share the memoized entry
	second := gw.Analyze(context.Background(), "  malaria ")

	if !first.OK || !second.OK {
		t.Fatal("Expected both results to be OK")
	}
	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call for repeated queries, got %d", provider.calls)
	}
	if second.Record.Name != first.Record.Name {
		t.Errorf("Expected cached record, got %q vs %q", second.Record.Name, first.Record.Name)
	}
}

func TestAnalyzeRetriesThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{steps: []step{
		{err: errors.New("connection reset")},
		{text: "I cannot answer in JSON right now."},
		{text: malariaJSON},
	}}
	gw := newTestGateway(provider)

	result := gw.Analyze(context.Background(), "malaria")

	if !result.OK {
		t.Fatalf("Expected success after retries, got diagnostic: %s", result.Diagnostic)
	}
	if provider.calls != 3 {
		t.Errorf("Expected 3 provider calls, got %d", provider.calls)
	}
}

func TestAnalyzeExhaustsAttempts(t *testing.T) {
	provider := &scriptedProvider{steps: []step{{err: errors.New("service unavailable")}}}
	gw := newTestGateway(provider)

	result := gw.Analyze(context.Background(), "malaria")

	if result.OK {
		t.Fatal("Expected failure after exhausted attempts")
	}
	if result.Diagnostic == "" {
		t.Error("Expected a diagnostic message on failure")
	}
	if provider.calls != 3 {
		t.Errorf("Expected 3 provider calls, got %d", provider.calls)
	}

	// The failed record still has safe defaults
	if result.Record.RegionBreakdown == nil || result.Record.Medications == nil {
		t.Error("Expected non-nil collections on the failure record")
	}
	if result.Record.Statistics.RecoveryRate != "0%" {
		t.Errorf("Expected 0%% default, got %q", result.Record.Statistics.RecoveryRate)
	}
}

func TestAnalyzeInvalidJSONFailure(t *testing.T) {
	provider := &scriptedProvider{steps: []step{{text: "no structured data here"}}}
	gw := newTestGateway(provider)

	result := gw.Analyze(context.Background(), "malaria")

	if result.OK {
		t.Fatal("Expected failure for persistent non-JSON output")
	}
	if result.Diagnostic != "invalid JSON from model" {
		t.Errorf("Expected invalid JSON diagnostic, got %q", result.Diagnostic)
	}
	if provider.calls != 3 {
		t.Errorf("Expected non-JSON output to be retried 3 times, got %d calls", provider.calls)
	}
}

func TestAnalyzeEmptyName(t *testing.T) {
	provider := &scriptedProvider{steps: []step{{text: malariaJSON}}}
	gw := newTestGateway(provider)

	result := gw.Analyze(context.Background(), "   ")

	if result.OK {
		t.Fatal("Expected failure for empty disease name")
	}
	if provider.calls != 0 {
		t.Errorf("Expected no provider calls for empty name, got %d", provider.calls)
	}
}

func TestAnalyzeFailureNotCached(t *testing.T) {
	provider := &scriptedProvider{steps: []step{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{text: malariaJSON},
	}}
	gw := newTestGateway(provider)

	if result := gw.Analyze(context.Background(), "malaria"); result.OK {
		t.Fatal("Expected first analysis to fail")
	}
	// A later request must reach the provider again instead of serving
	// the failed result from cache
	result := gw.Analyze(context.Background(), "malaria")
	if !result.OK {
		t.Fatalf("Expected recovery on fresh request, got diagnostic: %s", result.Diagnostic)
	}
}

func TestClearCache(t *testing.T) {
	provider := &scriptedProvider{steps: []step{{text: malariaJSON}}}
	gw := newTestGateway(provider)

	gw.Analyze(context.Background(), "malaria")
	if n := gw.ClearCache(); n != 1 {
		t.Errorf("Expected 1 cleared entry, got %d", n)
	}

	gw.Analyze(context.Background(), "malaria")
	if provider.calls != 2 {
		t.Errorf("Expected a fresh provider call after clearing, got %d calls", provider.calls)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("malaria", 1200, 0.2)

	if !strings.Contains(prompt.User, `"malaria"`) {
		t.Error("Expected the disease name in the user prompt")
	}
	if strings.Contains(prompt.User, diseasePlaceholder) {
		t.Error("Placeholder token must not survive substitution")
	}

	// The schema braces are literal text, never substitution slots
	if !strings.Contains(prompt.User, `"total_cases": integer`) {
		t.Error("Expected the literal schema in the user prompt")
	}
	if !strings.Contains(prompt.User, `{"region": string, "cases": integer, "deaths": integer}`) {
		t.Error("Expected literal braces preserved in the schema")
	}

	if !strings.Contains(prompt.System, "NEVER give medical advice") {
		t.Error("Expected the advice prohibition in the system prompt")
	}
	if prompt.MaxTokens != 1200 || prompt.Temperature != 0.2 {
		t.Errorf("Expected sampling parameters to pass through, got %d and %g",
			prompt.MaxTokens, prompt.Temperature)
	}
}

func TestBuildPromptHostileName(t *testing.T) {
	// A name containing brace syntax must be spliced literally
	prompt := BuildPrompt("dengue {fever}", 1200, 0.2)

	if !strings.Contains(prompt.User, `"dengue {fever}"`) {
		t.Error("Expected hostile name substituted literally")
	}
}
