// ABOUTME: YAML parsing for task definition documents
// ABOUTME: Decodes into typed structs and warns on unknown fields for forward compatibility
package taskdef

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/tasklens/stepmatch/internal/models"
)

// knownTaskFields are the top-level keys the current schema understands
var knownTaskFields = map[string]bool{
	"task_name":                  true,
	"display_name":               true,
	"description":                true,
	"steps":                      true,
	"total_steps":                true,
	"difficulty_level":           true,
	"estimated_total_duration":   true,
	"global_safety_notes":        true,
	"task_completion_indicators": true,
	"metadata":                   true,
}

// knownStepFields are the per-step keys the current schema understands
var knownStepFields = map[string]bool{
	"step_id":               true,
	"title":                 true,
	"task_description":      true,
	"tools_needed":          true,
	"completion_indicators": true,
	"visual_cues":           true,
	"estimated_duration":    true,
	"safety_notes":          true,
}

// Parse decodes and validates a single YAML task definition document.
// source is used only for log and error context (a file path or task name).
func Parse(data []byte, source string) (*models.TaskKnowledge, error) {
	var tk models.TaskKnowledge
	if err := yaml.Unmarshal(data, &tk); err != nil {
		return nil, &ValidationError{TaskName: source, Reason: fmt.Sprintf("not a valid task definition document: %v", err)}
	}

	warnUnknownFields(data, source)

	if err := Validate(&tk); err != nil {
		return nil, err
	}
	return &tk, nil
}

// warnUnknownFields logs extra fields instead of rejecting them, so newer
// definition files keep loading on older builds
func warnUnknownFields(data []byte, source string) {
	var raw struct {
		Fields map[string]yaml.Node `yaml:",inline"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return
	}

	for key := range raw.Fields {
		if !knownTaskFields[key] {
			log.Printf("[TaskDef] Warning: %s: unknown field %q ignored", source, key)
		}
	}

	var steps struct {
		Steps []struct {
			Fields map[string]yaml.Node `yaml:",inline"`
		} `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return
	}
	for i, step := range steps.Steps {
		for key := range step.Fields {
			if !knownStepFields[key] {
				log.Printf("[TaskDef] Warning: %s: steps[%d]: unknown field %q ignored", source, i, key)
			}
		}
	}
}
