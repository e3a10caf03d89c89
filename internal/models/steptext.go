// ABOUTME: Canonical embedding text builder for task steps
// ABOUTME: Single source of truth shared by precompute and ad hoc embedding paths
package models

import "strings"

// EmbeddingText builds the canonical text that gets embedded for a step.
// Field order is fixed: description, title, visual cues, tools, completion
// indicators. Visual cues lead the trailing block so that observation-style
// language from the vision model dominates the semantic signal over
// administrative metadata. Deterministic; must stay in sync everywhere a
// step is embedded.
func (s *TaskStep) EmbeddingText() string {
	parts := []string{
		s.Description,
		s.Title,
		strings.Join(s.VisualCues, " "),
		strings.Join(s.ToolsNeeded, " "),
		strings.Join(s.CompletionIndicators, " "),
	}
	return strings.Join(parts, " ")
}
