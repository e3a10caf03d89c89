// ABOUTME: Tests for YAML task definition parsing
// ABOUTME: Covers field decoding, invalid documents, and unknown-field tolerance
package taskdef

import (
	"strings"
	"testing"
)

const validYAML = `
task_name: pour_over_coffee
display_name: Brew Pour-Over Coffee
description: Brew a cup of coffee with a pour-over cone
difficulty_level: easy
total_steps: 2
steps:
  - step_id: 1
    title: Grind the beans
    task_description: Grind coffee beans to a medium-fine consistency
    tools_needed: [burr grinder]
    completion_indicators: [grounds resemble coarse sand]
    visual_cues: [beans in grinder hopper, grinder running]
    estimated_duration: 2 minutes
  - step_id: 2
    title: Bloom the grounds
    task_description: Pour hot water over the grounds and wait
    tools_needed: [gooseneck kettle]
    completion_indicators: [grounds bubbling]
    visual_cues: [kettle pouring water]
    estimated_duration: 1 minute
    safety_notes: [water is near boiling]
`

func TestParseValidDocument(t *testing.T) {
	tk, err := Parse([]byte(validYAML), "test.yaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if tk.TaskName != "pour_over_coffee" {
		t.Errorf("task name = %q", tk.TaskName)
	}
	if tk.DisplayName != "Brew Pour-Over Coffee" {
		t.Errorf("display name = %q", tk.DisplayName)
	}
	if tk.DifficultyLevel != "easy" {
		t.Errorf("difficulty = %q", tk.DifficultyLevel)
	}
	if tk.DeclaredTotalSteps != 2 {
		t.Errorf("declared total steps = %d", tk.DeclaredTotalSteps)
	}
	if len(tk.Steps) != 2 {
		t.Fatalf("got %d steps", len(tk.Steps))
	}

	step := tk.Steps[0]
	if step.StepID != 1 || step.Title != "Grind the beans" {
		t.Errorf("step 1 decoded wrong: %+v", step)
	}
	if step.Description != "Grind coffee beans to a medium-fine consistency" {
		t.Errorf("task_description not mapped to Description: %q", step.Description)
	}
	if len(step.VisualCues) != 2 {
		t.Errorf("visual cues = %v", step.VisualCues)
	}
	if len(tk.Steps[1].SafetyNotes) != 1 {
		t.Errorf("safety notes = %v", tk.Steps[1].SafetyNotes)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "not yaml at all",
			yaml:    "{{{{",
			wantErr: "not a valid task definition document",
		},
		{
			name:    "wrong scalar type for steps",
			yaml:    "task_name: t\ndisplay_name: T\ndescription: d\nsteps: 42\n",
			wantErr: "not a valid task definition document",
		},
		{
			name:    "valid yaml failing validation",
			yaml:    "task_name: t\ndisplay_name: T\nsteps: []\n",
			wantErr: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseToleratesUnknownFields(t *testing.T) {
	// Unknown keys at both levels are logged and ignored, not fatal
	doc := strings.Replace(validYAML, "difficulty_level: easy",
		"difficulty_level: easy\nfuture_field: something", 1)
	doc = strings.Replace(doc, "estimated_duration: 1 minute",
		"estimated_duration: 1 minute\n    camera_angle: overhead", 1)

	tk, err := Parse([]byte(doc), "test.yaml")
	if err != nil {
		t.Fatalf("document with unknown fields rejected: %v", err)
	}
	if len(tk.Steps) != 2 {
		t.Errorf("got %d steps", len(tk.Steps))
	}
}
