// ABOUTME: Match result model and confidence tier derivation
// ABOUTME: Defines MatchResult, ConfidenceLevel, and the similarity thresholds
package models

// ConfidenceLevel is a discretization of similarity used to gate
// downstream step-transition decisions
type ConfidenceLevel string

const (
	ConfidenceNone   ConfidenceLevel = "none"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Similarity thresholds for confidence tiers
const (
	HighConfidenceThreshold   = 0.70
	MediumConfidenceThreshold = 0.50
	LowConfidenceThreshold    = 0.35
)

// ConfidenceForSimilarity maps a similarity score to its confidence tier
func ConfidenceForSimilarity(similarity float64) ConfidenceLevel {
	switch {
	case similarity >= HighConfidenceThreshold:
		return ConfidenceHigh
	case similarity >= MediumConfidenceThreshold:
		return ConfidenceMedium
	case similarity >= LowConfidenceThreshold:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// MatchResult is a transient, never-persisted result of matching one
// observation against the step library
type MatchResult struct {
	StepID               int             `json:"step_id"`
	TaskName             string          `json:"task_name"`
	TaskDescription      string          `json:"task_description"`
	ToolsNeeded          []string        `json:"tools_needed"`
	CompletionIndicators []string        `json:"completion_indicators"`
	VisualCues           []string        `json:"visual_cues"`
	Similarity           float64         `json:"similarity"`
	ConfidenceLevel      ConfidenceLevel `json:"confidence_level"`
	MatchedCues          []string        `json:"matched_cues"`
}

// NoMatch returns the sentinel result used when nothing matched
func NoMatch() MatchResult {
	return MatchResult{
		StepID:               0,
		Similarity:           0.0,
		ConfidenceLevel:      ConfidenceNone,
		ToolsNeeded:          []string{},
		CompletionIndicators: []string{},
		VisualCues:           []string{},
		MatchedCues:          []string{},
	}
}

// IsMatch reports whether the result identifies a real step
func (m *MatchResult) IsMatch() bool {
	return m.StepID > 0
}

// IsReliable reports whether the match is trustworthy enough to drive a
// step transition (high or medium confidence)
func (m *MatchResult) IsReliable() bool {
	return m.ConfidenceLevel == ConfidenceHigh || m.ConfidenceLevel == ConfidenceMedium
}
