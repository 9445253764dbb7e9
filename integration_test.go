package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/healthinsight/disease-insight-api/cache"
	"github.com/healthinsight/disease-insight-api/config"
	"github.com/healthinsight/disease-insight-api/diseaseparser/entities"
	"github.com/healthinsight/disease-insight-api/gateway"
	"github.com/healthinsight/disease-insight-api/logging"
	"github.com/healthinsight/disease-insight-api/server"
	"github.com/healthinsight/disease-insight-api/validation"
)

const testResponse = `{
	"name": "Malaria",
	"summary": "A mosquito-borne parasitic disease.",
	"statistics": {
		"total_cases": "1,200,000",
		"incidence_per_100k": 29.4,
		"recovery_rate": "85",
		"mortality_rate": "0.3%"
	},
	"region_breakdown": [{"region": "Sub-Saharan Africa", "cases": 900000, "deaths": 2700}],
	"recovery_options": {"rest": "Supportive care and hydration."},
	"medications": [{"name": "Artemether", "dosage": "80mg", "side_effects": ["nausea"]}],
	"disclaimer": "This content is educational only and not medical advice."
}`

// staticProvider answers every completion with a fixed payload or error
type staticProvider struct {
	response string
	err      error
	calls    int
}

func (p *staticProvider) Name() string    { return "fake:integration" }
func (p *staticProvider) Available() bool { return true }

func (p *staticProvider) Complete(ctx context.Context, prompt gateway.Prompt) (string, error) {
	p.calls++
	return p.response, p.err
}

func TestMain(m *testing.M) {
	logging.InitLogger(os.TempDir(), "error", 1)
	os.Exit(m.Run())
}

func testServerConfig() *config.Config {
	return &config.Config{
		Port:           "8999",
		Address:        "127.0.0.1",
		Env:            config.EnvTest,
		LogLevel:       "error",
		MaxRequestBody: 1048576,
		MaxHeaderSize:  1048576,

		Provider:        config.ProviderOpenAI,
		Model:           "gpt-4o-mini",
		APIKey:          "test-key",
		MaxOutputTokens: 1200,
		Temperature:     0.2,
		RequestTimeout:  time.Second,
		MaxAttempts:     3,
		BackoffBase:     time.Millisecond,

		CacheTTL:  time.Minute,
		CacheSize: 64,
	}
}

func newTestServer(t *testing.T, provider gateway.Provider) *httptest.Server {
	t.Helper()

	cfg := testServerConfig()
	responseCache := cache.New(cfg.CacheSize, cfg.CacheTTL)
	analyzer := gateway.New(provider, responseCache, cfg)
	validator := validation.NewInputValidator()

	srv := server.NewServer(cfg, analyzer, validator, responseCache, provider)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("Failed to decode body %q: %v", body, err)
		}
	}
	return resp.StatusCode
}

func TestDiseaseEndpoint(t *testing.T) {
	provider := &staticProvider{response: testResponse}
	ts := newTestServer(t, provider)

	var result entities.AnalysisResult
	code := getJSON(t, ts.URL+"/disease/malaria", &result)

	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}
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
	if len(result.Record.RegionBreakdown) != 1 {
		t.Errorf("Expected 1 region entry, got %d", len(result.Record.RegionBreakdown))
	}
}

func TestDiseaseEndpointCaches(t *testing.T) {
	provider := &staticProvider{response: testResponse}
	ts := newTestServer(t, provider)

	for i := 0; i < 3; i++ {
		if code := getJSON(t, ts.URL+"/disease/malaria", nil); code != http.StatusOK {
			t.Fatalf("Expected status 200 on request %d, got %d", i+1, code)
		}
	}

	if provider.calls != 1 {
		t.Errorf("Expected 1 model call for repeated queries, got %d", provider.calls)
	}
}

func TestDiseaseEndpointGatewayFailure(t *testing.T) {
	provider := &staticProvider{err: errors.New("upstream unreachable")}
	ts := newTestServer(t, provider)

	var result entities.AnalysisResult
	code := getJSON(t, ts.URL+"/disease/malaria", &result)

	if code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", code)
	}
	if result.OK {
		t.Error("Expected OK=false in failure body")
	}
	if result.Diagnostic == "" {
		t.Error("Expected a diagnostic in the failure body")
	}
	if provider.calls != 3 {
		t.Errorf("Expected 3 attempts before giving up, got %d", provider.calls)
	}
}

func TestDiseaseEndpointRejectsInvalidInput(t *testing.T) {
	provider := &staticProvider{response: testResponse}
	ts := newTestServer(t, provider)

	code := getJSON(t, ts.URL+"/disease/%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil)
	if code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", code)
	}
	if provider.calls != 0 {
		t.Errorf("Expected no model calls for rejected input, got %d", provider.calls)
	}
}

func TestCacheClearEndpoint(t *testing.T) {
	provider := &staticProvider{response: testResponse}
	ts := newTestServer(t, provider)

	getJSON(t, ts.URL+"/disease/malaria", nil)

	resp, err := http.Post(ts.URL+"/cache/clear", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["cleared"] != 1 {
		t.Errorf("Expected 1 cleared entry, got %d", body["cleared"])
	}

	// The next request goes back to the model
	getJSON(t, ts.URL+"/disease/malaria", nil)
	if provider.calls != 2 {
		t.Errorf("Expected a fresh model call after clearing, got %d", provider.calls)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, &staticProvider{response: testResponse})

	var health map[string]any
	code := getJSON(t, ts.URL+"/health", &health)

	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}
	provider, ok := health["provider"].(map[string]any)
	if !ok || provider["name"] != "fake:integration" {
		t.Errorf("Unexpected provider info: %v", health["provider"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &staticProvider{response: testResponse})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestIndexEndpoint(t *testing.T) {
	ts := newTestServer(t, &staticProvider{response: testResponse})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
}
