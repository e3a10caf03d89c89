// ABOUTME: Two-phase validation for task definitions
// ABOUTME: Structural field checks followed by semantic step-sequence invariants
package taskdef

import (
	"fmt"
	"strings"

	"github.com/tasklens/stepmatch/internal/models"
)

// ValidationError reports a task definition that failed validation.
// It is fatal for the offending file only; directory loads continue.
type ValidationError struct {
	TaskName string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid task definition %q: field %s: %s", e.TaskName, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid task definition %q: %s", e.TaskName, e.Reason)
}

func validationErr(taskName, field, reason string) *ValidationError {
	return &ValidationError{TaskName: taskName, Field: field, Reason: reason}
}

// Validate runs both validation phases on a parsed task definition
func Validate(tk *models.TaskKnowledge) error {
	if err := validateStructural(tk); err != nil {
		return err
	}
	return validateSemantic(tk)
}

// validateStructural checks field presence and basic types (phase 1)
func validateStructural(tk *models.TaskKnowledge) error {
	if strings.TrimSpace(tk.TaskName) == "" {
		return validationErr(tk.TaskName, "task_name", "required")
	}
	if !isIdentifierSafe(tk.TaskName) {
		return validationErr(tk.TaskName, "task_name", "must contain only letters, digits, underscores, and hyphens")
	}
	if strings.TrimSpace(tk.DisplayName) == "" {
		return validationErr(tk.TaskName, "display_name", "required")
	}
	if strings.TrimSpace(tk.Description) == "" {
		return validationErr(tk.TaskName, "description", "required")
	}
	if len(tk.Steps) == 0 {
		return validationErr(tk.TaskName, "steps", "must contain at least one step")
	}

	for i := range tk.Steps {
		step := &tk.Steps[i]
		field := func(name string) string { return fmt.Sprintf("steps[%d].%s", i, name) }

		if step.StepID <= 0 {
			return validationErr(tk.TaskName, field("step_id"), fmt.Sprintf("must be a positive integer, got %d", step.StepID))
		}
		if strings.TrimSpace(step.Title) == "" {
			return validationErr(tk.TaskName, field("title"), "required")
		}
		if strings.TrimSpace(step.Description) == "" {
			return validationErr(tk.TaskName, field("task_description"), "required")
		}
		if strings.TrimSpace(step.EstimatedDuration) == "" {
			return validationErr(tk.TaskName, field("estimated_duration"), "required")
		}
		if step.ToolsNeeded == nil {
			return validationErr(tk.TaskName, field("tools_needed"), "required (may be an empty list)")
		}
		if step.CompletionIndicators == nil {
			return validationErr(tk.TaskName, field("completion_indicators"), "required (may be an empty list)")
		}
		if err := checkStringList(tk.TaskName, field("tools_needed"), step.ToolsNeeded); err != nil {
			return err
		}
		if err := checkStringList(tk.TaskName, field("completion_indicators"), step.CompletionIndicators); err != nil {
			return err
		}
		if err := checkStringList(tk.TaskName, field("visual_cues"), step.VisualCues); err != nil {
			return err
		}
		if step.SafetyNotes == nil {
			step.SafetyNotes = []string{}
		}
	}

	if tk.DifficultyLevel != "" {
		switch tk.DifficultyLevel {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			return validationErr(tk.TaskName, "difficulty_level",
				fmt.Sprintf("must be easy, medium, or hard, got %q", tk.DifficultyLevel))
		}
	}

	return nil
}

// validateSemantic checks step sequence and cue invariants (phase 2)
func validateSemantic(tk *models.TaskKnowledge) error {
	seen := make(map[int]bool, len(tk.Steps))
	for i := range tk.Steps {
		step := &tk.Steps[i]
		if seen[step.StepID] {
			return validationErr(tk.TaskName, "steps",
				fmt.Sprintf("duplicate step_id %d", step.StepID))
		}
		seen[step.StepID] = true

		// Matching depends on visual cues, so every step must declare at least one
		if len(step.VisualCues) == 0 {
			return validationErr(tk.TaskName, fmt.Sprintf("steps[%d].visual_cues", i),
				fmt.Sprintf("step %d must declare at least one visual cue", step.StepID))
		}
	}

	if tk.DeclaredTotalSteps != 0 && tk.DeclaredTotalSteps != len(tk.Steps) {
		return validationErr(tk.TaskName, "total_steps",
			fmt.Sprintf("declared %d steps but found %d", tk.DeclaredTotalSteps, len(tk.Steps)))
	}

	// Step ids must form a contiguous 1..N range; report the first gap
	for want := 1; want <= len(tk.Steps); want++ {
		if !seen[want] {
			return validationErr(tk.TaskName, "steps",
				fmt.Sprintf("step ids must be contiguous from 1 to %d: step %d is missing", len(tk.Steps), want))
		}
	}

	return nil
}

// checkStringList rejects empty or whitespace-only entries
func checkStringList(taskName, field string, list []string) error {
	for i, s := range list {
		if strings.TrimSpace(s) == "" {
			return validationErr(taskName, field, fmt.Sprintf("entry %d is empty", i))
		}
	}
	return nil
}

// isIdentifierSafe reports whether a task name is safe to use as a cache
// and vector-store key component
func isIdentifierSafe(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
