package diseaseparser

import "testing"

func TestExtractJSONDirect(t *testing.T) {
	obj := ExtractJSON(`{"name": "Malaria", "summary": "A mosquito-borne disease"}`)

	if obj["name"] != "Malaria" {
		t.Errorf("Expected name Malaria, got %v", obj["name"])
	}
	if obj["summary"] != "A mosquito-borne disease" {
		t.Errorf("Expected summary, got %v", obj["summary"])
	}
}

func TestExtractJSONWrappedInProse(t *testing.T) {
	text := `Sure! Here is the information you asked for:

{"name": "Influenza", "statistics": {"total_cases": 500}}

Let me know if you need anything else.`

	obj := ExtractJSON(text)

	if obj["name"] != "Influenza" {
		t.Errorf("Expected name Influenza, got %v", obj["name"])
	}

	stats, ok := obj["statistics"].(map[string]any)
	if !ok {
		t.Fatalf("Expected statistics object, got %T", obj["statistics"])
	}
	if stats["total_cases"] != float64(500) {
		t.Errorf("Expected total_cases 500, got %v", stats["total_cases"])
	}
}

func TestExtractJSONCodeFence(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n{\"name\": \"Dengue\"}\n```"},
		{"bare fence", "```\n{\"name\": \"Dengue\"}\n```"},
		{"fence with prose", "The result:\n```json\n{\"name\": \"Dengue\"}\n```\nDone."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj := ExtractJSON(tc.text)
			if obj["name"] != "Dengue" {
				t.Errorf("Expected name Dengue, got %v", obj["name"])
			}
		})
	}
}

func TestExtractJSONNoBraces(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"plain prose", "I cannot provide that information."},
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
		{"unbalanced brace", "here is { nothing useful"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj := ExtractJSON(tc.text)
			if len(obj) != 0 {
				t.Errorf("Expected empty object, got %v", obj)
			}
		})
	}
}

func TestExtractJSONNonObject(t *testing.T) {
	// A top-level array is not an object and must not be accepted
	obj := ExtractJSON(`[1, 2, 3]`)
	if len(obj) != 0 {
		t.Errorf("Expected empty object for array input, got %v", obj)
	}
}

func TestExtractJSONPrefersOuterObject(t *testing.T) {
	// Nested braces inside strings must not break the extraction
	text := `prefix {"name": "Cholera", "summary": "spread via {contaminated} water"} suffix`

	obj := ExtractJSON(text)
	if obj["name"] != "Cholera" {
		t.Errorf("Expected name Cholera, got %v", obj["name"])
	}
}
