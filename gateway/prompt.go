package gateway

import "strings"

// The user template embeds the literal target schema, braces included.
// The disease name is spliced in by replacing a placeholder token rather
// than brace-style templating, so the schema's literal braces can never
// be mistaken for substitution slots.
const diseasePlaceholder = "%DISEASE%"

const systemInstructions = `You are a careful medical information formatter. You NEVER give medical advice.
You ONLY return JSON that fits the schema. If you don't know something, estimate conservatively.
Percentages must be strings with a percent sign (e.g., "72.4%"). Integers must be integers.`

const userTemplate = `Provide structured, didactic information about the disease: "%DISEASE%".
Return STRICT JSON (no prose outside JSON) with the following schema:

{
  "name": string,
  "summary": string,
  "statistics": {
    "total_cases": integer,
    "incidence_per_100k": number,
    "recovery_rate": string,
    "mortality_rate": string
  },
  "region_breakdown": [
    {"region": string, "cases": integer, "deaths": integer}
  ],
  "recovery_options": {
    "<option_name>": "1-3 plain sentences (no medical advice, general info)"
  },
  "medications": [
    {"name": string, "side_effects": [string, ...], "dosage": string}
  ],
  "disclaimer": "This content is educational only and not medical advice."
}

Rules:
- Output MUST be valid JSON with double quotes only. No markdown, no backticks, no text outside JSON.`

// BuildPrompt assembles the full model request for one disease name.
// The name must already be validated; it is substituted literally.
func BuildPrompt(disease string, maxTokens int, temperature float64) Prompt {
	return Prompt{
		System:      systemInstructions,
		User:        strings.ReplaceAll(userTemplate, diseasePlaceholder, disease),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
