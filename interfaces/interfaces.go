// Package interfaces defines core abstractions for the disease insight API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"

	"github.com/healthinsight/disease-insight-api/diseaseparser/entities"
)

// DiseaseAnalyzer defines the contract for the analysis pipeline: prompt
// the external model, repair its output and return a fully-typed result.
// Analyze never panics and never returns an error; failures are carried
// inside the result as a diagnostic string.
type DiseaseAnalyzer interface {
	// Analyze runs the fetch/normalize cycle for one disease name
	Analyze(ctx context.Context, disease string) entities.AnalysisResult

	// ClearCache drops all memoized results and reports how many were removed
	ClearCache() int
}

// ResponseCache defines the contract for short-lived memoization of
// analysis results, keyed by disease name and model identifier. Entries
// expire automatically; Clear is the only manual invalidation.
type ResponseCache interface {
	Get(disease, model string) (entities.DiseaseRecord, string, bool)
	Put(disease, model string, record entities.DiseaseRecord, raw string)
	Clear() int
	Len() int
}

// Scheduler defines the contract for background job scheduling and
// health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// InputValidator defines the contract for validating user-supplied
// disease names before they reach the prompt builder.
type InputValidator interface {
	ValidateDiseaseName(input string) error
}
