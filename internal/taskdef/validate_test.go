// ABOUTME: Tests for two-phase task definition validation
// ABOUTME: Covers structural field checks and semantic step-sequence invariants
package taskdef

import (
	"strings"
	"testing"

	"github.com/tasklens/stepmatch/internal/models"
)

func validTask() *models.TaskKnowledge {
	return &models.TaskKnowledge{
		TaskName:    "change_tire",
		DisplayName: "Change a Flat Tire",
		Description: "Replace a flat tire with the spare",
		Steps: []models.TaskStep{
			{
				StepID:               1,
				Title:                "Loosen lug nuts",
				Description:          "Loosen each lug nut half a turn",
				ToolsNeeded:          []string{"lug wrench"},
				CompletionIndicators: []string{"nuts turn freely"},
				VisualCues:           []string{"wrench on nut"},
				EstimatedDuration:    "3 minutes",
			},
			{
				StepID:               2,
				Title:                "Jack up the car",
				Description:          "Raise the car until the tire clears the ground",
				ToolsNeeded:          []string{"jack"},
				CompletionIndicators: []string{"tire off the ground"},
				VisualCues:           []string{"jack under frame"},
				EstimatedDuration:    "5 minutes",
			},
		},
	}
}

func TestValidateAcceptsValidTask(t *testing.T) {
	if err := Validate(validTask()); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.TaskKnowledge)
		wantErr string
	}{
		{
			name:    "missing task name",
			mutate:  func(tk *models.TaskKnowledge) { tk.TaskName = "" },
			wantErr: "task_name",
		},
		{
			name:    "task name with path characters",
			mutate:  func(tk *models.TaskKnowledge) { tk.TaskName = "change/tire" },
			wantErr: "must contain only letters",
		},
		{
			name:    "missing display name",
			mutate:  func(tk *models.TaskKnowledge) { tk.DisplayName = "  " },
			wantErr: "display_name",
		},
		{
			name:    "missing description",
			mutate:  func(tk *models.TaskKnowledge) { tk.Description = "" },
			wantErr: "description",
		},
		{
			name:    "no steps",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps = nil },
			wantErr: "at least one step",
		},
		{
			name:    "non-positive step id",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[0].StepID = 0 },
			wantErr: "steps[0].step_id",
		},
		{
			name:    "missing step title",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[1].Title = "" },
			wantErr: "steps[1].title",
		},
		{
			name:    "missing step description",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[0].Description = "" },
			wantErr: "steps[0].task_description",
		},
		{
			name:    "missing estimated duration",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[0].EstimatedDuration = "" },
			wantErr: "steps[0].estimated_duration",
		},
		{
			name:    "nil tools list",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[0].ToolsNeeded = nil },
			wantErr: "steps[0].tools_needed",
		},
		{
			name:    "nil completion indicators",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[0].CompletionIndicators = nil },
			wantErr: "steps[0].completion_indicators",
		},
		{
			name:    "blank tool entry",
			mutate:  func(tk *models.TaskKnowledge) { tk.Steps[0].ToolsNeeded = []string{"jack", "  "} },
			wantErr: "entry 1 is empty",
		},
		{
			name:    "unknown difficulty",
			mutate:  func(tk *models.TaskKnowledge) { tk.DifficultyLevel = "impossible" },
			wantErr: "difficulty_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTask()
			tt.mutate(tk)

			err := Validate(tk)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateSemantic(t *testing.T) {
	t.Run("duplicate step ids", func(t *testing.T) {
		tk := validTask()
		tk.Steps[1].StepID = 1

		err := Validate(tk)
		if err == nil || !strings.Contains(err.Error(), "duplicate step_id 1") {
			t.Errorf("expected duplicate step_id error, got %v", err)
		}
	})

	t.Run("step without visual cues", func(t *testing.T) {
		tk := validTask()
		tk.Steps[1].VisualCues = nil

		err := Validate(tk)
		if err == nil || !strings.Contains(err.Error(), "at least one visual cue") {
			t.Errorf("expected visual cue error, got %v", err)
		}
	})

	t.Run("declared total steps mismatch", func(t *testing.T) {
		tk := validTask()
		tk.DeclaredTotalSteps = 5

		err := Validate(tk)
		if err == nil || !strings.Contains(err.Error(), "declared 5 steps but found 2") {
			t.Errorf("expected total_steps error, got %v", err)
		}
	})

	t.Run("gap in step ids names the missing step", func(t *testing.T) {
		tk := validTask()
		tk.Steps = append(tk.Steps, models.TaskStep{
			StepID:               4,
			Title:                "Mount the spare",
			Description:          "Mount the spare tire on the studs",
			ToolsNeeded:          []string{"spare tire"},
			CompletionIndicators: []string{"tire seated"},
			VisualCues:           []string{"tire on studs"},
			EstimatedDuration:    "5 minutes",
		})

		err := Validate(tk)
		if err == nil {
			t.Fatal("expected contiguity error, got nil")
		}
		if !strings.Contains(err.Error(), "contiguous from 1 to 3") || !strings.Contains(err.Error(), "step 3 is missing") {
			t.Errorf("expected gap report naming step 3, got %v", err)
		}
	})

	t.Run("out of order but contiguous ids are accepted", func(t *testing.T) {
		tk := validTask()
		tk.Steps[0].StepID = 2
		tk.Steps[1].StepID = 1

		if err := Validate(tk); err != nil {
			t.Errorf("contiguous out-of-order ids rejected: %v", err)
		}
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{TaskName: "brew", Field: "steps", Reason: "duplicate step_id 2"}
	want := `invalid task definition "brew": field steps: duplicate step_id 2`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &ValidationError{TaskName: "brew", Reason: "not yaml"}
	want = `invalid task definition "brew": not yaml`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
