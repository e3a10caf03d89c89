// ABOUTME: Benchmark scenario data: task fixtures and labeled observations
// ABOUTME: Each scenario pairs a synthetic observation with its ground-truth step
package matchbench

import (
	"fmt"

	"github.com/tasklens/stepmatch/internal/models"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

// Scenario is one labeled observation with its expected match
type Scenario struct {
	ID           string
	Observation  string
	TaskFilter   string
	ExpectedTask string
	ExpectedStep int
}

var tireChangeYAML = []byte(`
task_name: change_tire
display_name: Change a Flat Tire
description: Replace a flat tire with the spare using the jack and lug wrench
difficulty_level: medium
steps:
  - step_id: 1
    title: Loosen the lug nuts
    task_description: Use the lug wrench to loosen each lug nut half a turn while the wheel is on the ground
    tools_needed: [lug wrench]
    completion_indicators: [all lug nuts turn freely]
    visual_cues: [lug wrench on wheel nut, person crouching at wheel, wrench turning]
    estimated_duration: 3 minutes
  - step_id: 2
    title: Jack up the car
    task_description: Place the jack under the frame near the flat tire and raise the car until the tire clears the ground
    tools_needed: [jack]
    completion_indicators: [tire off the ground]
    visual_cues: [jack under car frame, car lifting, tire above ground]
    estimated_duration: 5 minutes
  - step_id: 3
    title: Mount the spare
    task_description: Remove the flat tire and mount the spare tire on the wheel studs
    tools_needed: [spare tire]
    completion_indicators: [spare tire seated on studs]
    visual_cues: [spare tire lifted onto studs, flat tire on ground, hands holding tire]
    estimated_duration: 5 minutes
`)

var coffeeYAML = []byte(`
task_name: pour_over_coffee
display_name: Brew Pour-Over Coffee
description: Brew a cup of coffee with a pour-over cone and paper filter
difficulty_level: easy
steps:
  - step_id: 1
    title: Grind the beans
    task_description: Grind coffee beans to a medium-fine consistency
    tools_needed: [burr grinder]
    completion_indicators: [grounds resemble coarse sand]
    visual_cues: [beans in grinder hopper, grinder running, ground coffee collecting]
    estimated_duration: 2 minutes
  - step_id: 2
    title: Bloom the grounds
    task_description: Pour a small amount of hot water over the grounds and wait for them to bloom
    tools_needed: [gooseneck kettle]
    completion_indicators: [grounds bubbling and swelling]
    visual_cues: [kettle pouring water, grounds bubbling, steam rising from cone]
    estimated_duration: 1 minute
`)

// LoadFixtureTasks parses the built-in benchmark task definitions
func LoadFixtureTasks() ([]*models.TaskKnowledge, error) {
	var tasks []*models.TaskKnowledge
	for _, raw := range [][]byte{tireChangeYAML, coffeeYAML} {
		tk, err := taskdef.Parse(raw, "matchbench fixture")
		if err != nil {
			return nil, fmt.Errorf("invalid benchmark fixture: %w", err)
		}
		tasks = append(tasks, tk)
	}
	return tasks, nil
}

// Scenarios returns the labeled observations evaluated by the benchmark
func Scenarios() []Scenario {
	return []Scenario{
		{
			ID:           "tire-1",
			Observation:  "a person crouching at the wheel turning a lug wrench on a wheel nut",
			ExpectedTask: "change_tire",
			ExpectedStep: 1,
		},
		{
			ID:           "tire-2",
			Observation:  "the jack is under the car frame and the car is lifting off the ground",
			ExpectedTask: "change_tire",
			ExpectedStep: 2,
		},
		{
			ID:           "tire-3",
			Observation:  "hands holding a spare tire and lifting it onto the wheel studs",
			ExpectedTask: "change_tire",
			ExpectedStep: 3,
		},
		{
			ID:           "tire-filtered",
			Observation:  "jack under car frame lifting the car",
			TaskFilter:   "change_tire",
			ExpectedTask: "change_tire",
			ExpectedStep: 2,
		},
		{
			ID:           "coffee-1",
			Observation:  "coffee beans in the grinder hopper with the grinder running",
			ExpectedTask: "pour_over_coffee",
			ExpectedStep: 1,
		},
		{
			ID:           "coffee-2",
			Observation:  "kettle pouring water over coffee grounds that are bubbling with steam rising",
			ExpectedTask: "pour_over_coffee",
			ExpectedStep: 2,
		},
	}
}
