package diseaseparser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/healthinsight/disease-insight-api/diseaseparser/entities"
)

// Normalize coerces an arbitrary JSON-like object into a fully-typed
// DiseaseRecord. Every field is coerced independently so one bad field
// never blocks the others, and anything uninterpretable falls back to a
// safe default. The function is pure and idempotent: normalizing an
// already-normalized record yields the same record.
func Normalize(obj map[string]any) entities.DiseaseRecord {
	rec := entities.EmptyRecord()
	if obj == nil {
		return rec
	}

	rec.Name = strings.TrimSpace(coerceString(obj["name"]))
	rec.Summary = strings.TrimSpace(coerceString(obj["summary"]))
	rec.Disclaimer = strings.TrimSpace(coerceString(obj["disclaimer"]))

	if stats, ok := obj["statistics"].(map[string]any); ok {
		rec.Statistics.TotalCases = coerceInt(stats["total_cases"])
		rec.Statistics.IncidencePer100k = coerceFloat(stats["incidence_per_100k"])
		rec.Statistics.RecoveryRate = coercePercent(stats["recovery_rate"])
		rec.Statistics.MortalityRate = coercePercent(stats["mortality_rate"])
	}

	if regions, ok := obj["region_breakdown"].([]any); ok {
		for _, item := range regions {
			region, ok := item.(map[string]any)
			if !ok {
				// Malformed elements are dropped, not replaced by placeholders
				continue
			}
			rec.RegionBreakdown = append(rec.RegionBreakdown, entities.RegionStat{
				Region: coerceString(region["region"]),
				Cases:  coerceInt(region["cases"]),
				Deaths: coerceInt(region["deaths"]),
			})
		}
	}

	if options, ok := obj["recovery_options"].(map[string]any); ok {
		for key, value := range options {
			rec.RecoveryOptions[coerceString(key)] = coerceString(value)
		}
	}

	if meds, ok := obj["medications"].([]any); ok {
		for _, item := range meds {
			med, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := entities.Medication{
				Name:        coerceString(med["name"]),
				Dosage:      coerceString(med["dosage"]),
				SideEffects: []string{},
			}
			if effects, ok := med["side_effects"].([]any); ok {
				for _, effect := range effects {
					if s := coerceString(effect); s != "" {
						entry.SideEffects = append(entry.SideEffects, s)
					}
				}
			}
			rec.Medications = append(rec.Medications, entry)
		}
	}

	return rec
}

// ParseRecord extracts a JSON object from raw model text and normalizes it.
func ParseRecord(text string) entities.DiseaseRecord {
	return Normalize(ExtractJSON(text))
}

// NormalizeValue accepts whatever shape the caller holds: raw text, an
// already-decoded object, or a typed record. Always returns a fully-typed
// record, never fails.
func NormalizeValue(v any) entities.DiseaseRecord {
	switch value := v.(type) {
	case nil:
		return entities.EmptyRecord()
	case string:
		return ParseRecord(value)
	case []byte:
		return ParseRecord(string(value))
	case json.RawMessage:
		return ParseRecord(string(value))
	case map[string]any:
		return Normalize(value)
	case entities.DiseaseRecord:
		data, err := json.Marshal(value)
		if err != nil {
			return entities.EmptyRecord()
		}
		return ParseRecord(string(data))
	default:
		return entities.EmptyRecord()
	}
}

// coerceString converts any scalar to its string form. Nil becomes "".
func coerceString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// coerceInt parses integers out of native numbers or decorated strings
// ("12,345", "1 200", "42.7"). Thousands separators and decimal suffixes
// are stripped; failures and negatives fall back to 0.
func coerceInt(v any) int {
	var n int
	switch value := v.(type) {
	case float64:
		n = int(value)
	case int:
		n = value
	case int64:
		n = int(value)
	case string:
		s := strings.TrimSpace(value)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		if dot := strings.Index(s, "."); dot != -1 {
			s = s[:dot]
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// coerceFloat parses real numbers, normalizing decimal commas to points.
// A string with both separators ("1,234.5") or repeated commas is treated
// as thousands-separated; a single comma is a decimal comma.
func coerceFloat(v any) float64 {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case int:
		f = float64(value)
	case string:
		s := strings.TrimSpace(value)
		s = strings.ReplaceAll(s, " ", "")
		switch {
		case strings.Contains(s, ".") || strings.Count(s, ",") > 1:
			s = strings.ReplaceAll(s, ",", "")
		default:
			s = strings.ReplaceAll(s, ",", ".")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 {
		return 0
	}
	return f
}

// coercePercent guarantees a percent string. Numeric values (with or
// without a trailing "%", comma decimals allowed) gain the "%" suffix;
// non-numeric text passes through unchanged as an already-formatted
// descriptive string; empty or missing values become "0%".
func coercePercent(v any) string {
	if v == nil {
		return "0%"
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64) + "%"
	}
	t := strings.TrimSpace(coerceString(v))
	if t == "" {
		return "0%"
	}
	numeric := strings.ReplaceAll(strings.TrimSuffix(t, "%"), ",", ".")
	if _, err := strconv.ParseFloat(strings.TrimSpace(numeric), 64); err != nil {
		return t
	}
	if !strings.HasSuffix(t, "%") {
		return t + "%"
	}
	return t
}
