// Package handlers provides HTTP request handlers for the disease insight
// API: disease analysis, health checks, operator cache management and
// JSON response formatting with input validation and error handling.
package handlers

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthinsight/disease-insight-api/interfaces"
	"github.com/healthinsight/disease-insight-api/logging"
)

var serverStartTime = time.Now()

// Minimum response size to consider compression (1KB)
const compressionThreshold = 1024

// RespondWithJSON writes a JSON response, gzip-compressed when the
// payload is large enough and the client accepts it.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))

	shouldCompress := len(data) >= compressionThreshold && r != nil &&
		strings.Contains(strings.ToLower(r.Header.Get("Accept-Encoding")), "gzip")

	if shouldCompress {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(code)
		gz := gzip.NewWriter(w)
		defer gz.Close()
		if _, err := gz.Write(data); err != nil {
			logging.Warn("Failed to write compressed response", "error", err)
		}
		return
	}

	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a small JSON error body. Error responses are
// never compressed.
func RespondWithError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	jsonResponse, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(jsonResponse); err != nil {
		logging.Warn("Failed to write error response", "error", err)
	}
}

// AnalyzeDisease validates the disease name and runs the full
// fetch/normalize pipeline. Gateway exhaustion surfaces as 502 with the
// diagnostic kept in the body for debugging.
func AnalyzeDisease(analyzer interfaces.DiseaseAnalyzer, validator interfaces.InputValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		if err := validator.ValidateDiseaseName(name); err != nil {
			logging.Warn("Unusual user input", "disease", name, "error", err)
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		result := analyzer.Analyze(r.Context(), strings.TrimSpace(name))
		if !result.OK {
			RespondWithJSON(w, r, http.StatusBadGateway, result)
			return
		}

		RespondWithJSON(w, r, http.StatusOK, result)
	}
}

// ClearCache drops every memoized analysis result. Operator-facing.
func ClearCache(analyzer interfaces.DiseaseAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := analyzer.ClearCache()
		RespondWithJSON(w, r, http.StatusOK, map[string]any{
			"cleared": removed,
		})
	}
}

// ProviderInfo is the health view of the configured model provider.
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string       `json:"status"`
	Uptime        string       `json:"uptime"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	MemoryUsageMB int          `json:"memory_usage_mb"`
	CacheEntries  int          `json:"cache_entries"`
	Provider      ProviderInfo `json:"provider"`
}

// HealthCheck returns server health information
func HealthCheck(cache interfaces.ResponseCache, provider ProviderInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		uptime := time.Since(serverStartTime)

		status := "healthy"
		if !provider.Available {
			status = "degraded"
		}

		RespondWithJSON(w, r, http.StatusOK, HealthResponse{
			Status:        status,
			Uptime:        formatUptimeHuman(uptime),
			UptimeSeconds: uptime.Seconds(),
			MemoryUsageMB: int(m.Alloc / 1024 / 1024),
			CacheEntries:  cache.Len(),
			Provider:      provider,
		})
	}
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
