// Package validation provides input validation for the disease insight API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/healthinsight/disease-insight-api/interfaces"
)

const maxDiseaseNameLength = 100

// Pre-compiled pattern for disease names: letters from any script
// (accents included), digits and a small set of safe punctuation.
var diseaseNameRegex = regexp.MustCompile(`^[\p{L}0-9\s\-\.\+'()]+$`)

// Dangerous patterns as plain substrings; strings.Contains is far cheaper
// than a regex here and the input is short.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
	"eval(", "expression(", "@import",
	// SQL injection patterns
	"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
	"--", "/*", "*/",
	// Command injection patterns
	"`", "$(", "${",
	// Path traversal patterns
	"../", "..\\", "%2e%2e",
}

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.InputValidator {
	return &InputValidatorImpl{}
}

// ValidateDiseaseName checks a user-supplied disease name before it is
// interpolated into a prompt. Accepts trimmed, bounded, allowlisted text
// and rejects anything carrying injection patterns.
func (v *InputValidatorImpl) ValidateDiseaseName(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("disease name cannot be empty")
	}

	if len(trimmed) > maxDiseaseNameLength {
		return fmt.Errorf("disease name too long: %d characters (max %d)", len(trimmed), maxDiseaseNameLength)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("disease name contains invalid sequence")
		}
	}

	if !diseaseNameRegex.MatchString(trimmed) {
		return fmt.Errorf("disease name contains invalid characters")
	}

	return nil
}
