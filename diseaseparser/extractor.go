// Package diseaseparser turns raw model output into strict DiseaseRecord
// entities. Extraction digs a JSON object out of possibly malformed text,
// normalization coerces every field into the expected type so rendering
// never has to branch on shape.
package diseaseparser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Greedy brace match across the whole text, last-resort extraction only.
var braceRegex = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON locates and parses the first plausible JSON object inside
// text. Models sometimes wrap JSON in prose or markdown code fences, so
// several strategies are tried in order:
//  1. direct parse of the whole text
//  2. parse of the fenced block, if the text contains ``` fences
//  3. parse of the substring between the first '{' and the last '}'
//  4. greedy brace-delimited regex match
//
// On total failure an empty map is returned, never an error: the
// normalizer turns an empty map into an all-default record.
func ExtractJSON(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{}
	}

	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	if fenced := stripCodeFence(text); fenced != "" {
		if obj, ok := tryParseObject(fenced); ok {
			return obj
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if obj, ok := tryParseObject(text[start : end+1]); ok {
			return obj
		}
	}

	if match := braceRegex.FindString(text); match != "" {
		if obj, ok := tryParseObject(match); ok {
			return obj
		}
	}

	return map[string]any{}
}

func tryParseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stripCodeFence returns the content of the first ``` block, with an
// optional language tag ("json") on the opening fence skipped. Returns ""
// when the text carries no complete fence pair.
func stripCodeFence(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return ""
	}
	start += 3
	// Skip a short language identifier line such as "json"
	if newline := strings.Index(text[start:], "\n"); newline >= 0 && newline < 20 {
		start += newline + 1
	}
	end := strings.Index(text[start:], "```")
	if end <= 0 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}
