package entities

// Statistics holds the headline numbers for a disease. Numeric fields are
// genuine numbers after normalization, percent fields always carry a
// trailing "%".
type Statistics struct {
	TotalCases       int     `json:"total_cases"`
	IncidencePer100k float64 `json:"incidence_per_100k"`
	RecoveryRate     string  `json:"recovery_rate"`
	MortalityRate    string  `json:"mortality_rate"`
}

// RegionStat is one row of the regional breakdown table.
type RegionStat struct {
	Region string `json:"region"`
	Cases  int    `json:"cases"`
	Deaths int    `json:"deaths"`
}

// Medication describes one example medication for a disease.
type Medication struct {
	Name        string   `json:"name"`
	Dosage      string   `json:"dosage"`
	SideEffects []string `json:"side_effects"`
}

// DiseaseRecord is the fully-typed, default-filled record consumed by
// clients. Collection fields are always present (empty, never nil), so
// consumers only ever branch on emptiness.
type DiseaseRecord struct {
	Name            string            `json:"name"`
	Summary         string            `json:"summary"`
	Statistics      Statistics        `json:"statistics"`
	RegionBreakdown []RegionStat      `json:"region_breakdown"`
	RecoveryOptions map[string]string `json:"recovery_options"`
	Medications     []Medication      `json:"medications"`
	Disclaimer      string            `json:"disclaimer"`
}

// AnalysisResult is the structured outcome of one analysis request.
// OK is false when the model could not be reached or never produced a
// usable JSON object; Diagnostic then carries the last error text.
type AnalysisResult struct {
	OK         bool          `json:"ok"`
	Record     DiseaseRecord `json:"record"`
	Raw        string        `json:"raw,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

// EmptyRecord returns a record with all defaults filled in: zero numbers,
// "0%" percent strings and empty (non-nil) collections.
func EmptyRecord() DiseaseRecord {
	return DiseaseRecord{
		Statistics: Statistics{
			RecoveryRate:  "0%",
			MortalityRate: "0%",
		},
		RegionBreakdown: []RegionStat{},
		RecoveryOptions: map[string]string{},
		Medications:     []Medication{},
	}
}
