// ABOUTME: Task knowledge models for the step matching engine
// ABOUTME: Defines TaskStep, TaskKnowledge, and TaskID with lookup helpers
package models

import "fmt"

// Difficulty levels a task definition may declare
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// TaskID identifies one step of one task. It is the cache and vector-store
// key, replacing ad hoc string concatenation.
type TaskID struct {
	TaskName string
	StepID   int
}

// String renders the canonical key form "task:step"
func (id TaskID) String() string {
	return fmt.Sprintf("%s:%d", id.TaskName, id.StepID)
}

// TaskStep is one step of a procedure. Immutable once constructed;
// a reload replaces the whole TaskKnowledge.
type TaskStep struct {
	StepID               int      `json:"step_id" yaml:"step_id"`
	Title                string   `json:"title" yaml:"title"`
	Description          string   `json:"description" yaml:"task_description"`
	ToolsNeeded          []string `json:"tools_needed" yaml:"tools_needed"`
	CompletionIndicators []string `json:"completion_indicators" yaml:"completion_indicators"`
	VisualCues           []string `json:"visual_cues" yaml:"visual_cues"`
	EstimatedDuration    string   `json:"estimated_duration" yaml:"estimated_duration"`
	SafetyNotes          []string `json:"safety_notes,omitempty" yaml:"safety_notes"`
}

// TaskKnowledge is the in-memory representation of one loaded task definition
type TaskKnowledge struct {
	TaskName                 string            `json:"task_name" yaml:"task_name"`
	DisplayName              string            `json:"display_name" yaml:"display_name"`
	Description              string            `json:"description" yaml:"description"`
	Steps                    []TaskStep        `json:"steps" yaml:"steps"`
	DeclaredTotalSteps       int               `json:"total_steps,omitempty" yaml:"total_steps"`
	DifficultyLevel          string            `json:"difficulty_level,omitempty" yaml:"difficulty_level"`
	EstimatedTotalDuration   string            `json:"estimated_total_duration,omitempty" yaml:"estimated_total_duration"`
	GlobalSafetyNotes        []string          `json:"global_safety_notes,omitempty" yaml:"global_safety_notes"`
	TaskCompletionIndicators []string          `json:"task_completion_indicators,omitempty" yaml:"task_completion_indicators"`
	Metadata                 map[string]string `json:"metadata,omitempty" yaml:"metadata"`
}

// StepByID returns the step with the given id, or nil if absent
func (tk *TaskKnowledge) StepByID(stepID int) *TaskStep {
	for i := range tk.Steps {
		if tk.Steps[i].StepID == stepID {
			return &tk.Steps[i]
		}
	}
	return nil
}

// TotalSteps returns the number of steps in the task
func (tk *TaskKnowledge) TotalSteps() int {
	return len(tk.Steps)
}

// AllTools returns the deduplicated union of tools across all steps,
// preserving first-seen order
func (tk *TaskKnowledge) AllTools() []string {
	seen := make(map[string]bool)
	var tools []string
	for _, step := range tk.Steps {
		for _, tool := range step.ToolsNeeded {
			if !seen[tool] {
				seen[tool] = true
				tools = append(tools, tool)
			}
		}
	}
	return tools
}

// AllVisualCues returns the deduplicated union of visual cues across all
// steps, preserving first-seen order
func (tk *TaskKnowledge) AllVisualCues() []string {
	seen := make(map[string]bool)
	var cues []string
	for _, step := range tk.Steps {
		for _, cue := range step.VisualCues {
			if !seen[cue] {
				seen[cue] = true
				cues = append(cues, cue)
			}
		}
	}
	return cues
}

// StepIDs returns the ids of all steps in definition order
func (tk *TaskKnowledge) StepIDs() []int {
	ids := make([]int, len(tk.Steps))
	for i, step := range tk.Steps {
		ids[i] = step.StepID
	}
	return ids
}
