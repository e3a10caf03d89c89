// ABOUTME: Benchmark runner building a knowledge base over the offline embedder
// ABOUTME: Executes labeled scenarios and collects per-scenario match results
package matchbench

import (
	"context"
	"fmt"
	"time"

	"github.com/tasklens/stepmatch/internal/knowledge"
	"github.com/tasklens/stepmatch/internal/models"
	"github.com/tasklens/stepmatch/internal/storage"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

// TestResult records the outcome of a single scenario
type TestResult struct {
	ScenarioID  string                 `json:"scenario_id"`
	Observation string                 `json:"observation"`
	Expected    models.TaskID          `json:"expected"`
	Best        models.MatchResult     `json:"best"`
	Correct     bool                   `json:"correct"`
	Reliable    bool                   `json:"reliable"`
	Confidence  models.ConfidenceLevel `json:"confidence"`
	Duration    time.Duration          `json:"duration_ns"`
}

// fixtureLoader serves the built-in benchmark tasks without touching disk
type fixtureLoader struct {
	tasks map[string]*models.TaskKnowledge
}

func newFixtureLoader() (*fixtureLoader, error) {
	tasks, err := LoadFixtureTasks()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*models.TaskKnowledge, len(tasks))
	for _, t := range tasks {
		byName[t.TaskName] = t
	}
	return &fixtureLoader{tasks: byName}, nil
}

func (l *fixtureLoader) Load(taskName string) (*models.TaskKnowledge, error) {
	task, ok := l.tasks[taskName]
	if !ok {
		return nil, fmt.Errorf("no benchmark fixture named %q", taskName)
	}
	return task, nil
}

func (l *fixtureLoader) LoadAll() (map[string]*models.TaskKnowledge, error) {
	return l.tasks, nil
}

var _ taskdef.Loader = (*fixtureLoader)(nil)

// BenchmarkRunner executes match-quality scenarios against an offline
// knowledge base. No API key or network access is needed.
type BenchmarkRunner struct {
	kb      *knowledge.KnowledgeBase
	verbose bool
}

// NewBenchmarkRunner builds a knowledge base over the bag-of-words
// embedder and precomputes every fixture step embedding.
func NewBenchmarkRunner(ctx context.Context, verbose bool) (*BenchmarkRunner, error) {
	loader, err := newFixtureLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to load benchmark fixtures: %w", err)
	}

	store := storage.NewMemoryVectorStore(Dimension)
	kb := knowledge.New(loader, NewBagOfWordsEmbedder(), store, nil, knowledge.Options{})
	if err := kb.Initialize(ctx, true); err != nil {
		return nil, fmt.Errorf("failed to initialize benchmark knowledge base: %w", err)
	}

	return &BenchmarkRunner{kb: kb, verbose: verbose}, nil
}

// RunScenario executes a single scenario and scores the best match
func (r *BenchmarkRunner) RunScenario(ctx context.Context, scenario Scenario) TestResult {
	if r.verbose {
		fmt.Printf("\n========================================\n")
		fmt.Printf("RUNNING: %s\n", scenario.ID)
		fmt.Printf("========================================\n")
		fmt.Printf("Observation: %s\n", scenario.Observation)
	}

	start := time.Now()
	best := r.kb.FindMatchingStep(ctx, scenario.Observation, scenario.TaskFilter)
	elapsed := time.Since(start)

	correct := best.TaskName == scenario.ExpectedTask && best.StepID == scenario.ExpectedStep

	if r.verbose {
		fmt.Printf("Best: %s:%d similarity=%.3f confidence=%s correct=%v\n",
			best.TaskName, best.StepID, best.Similarity, best.ConfidenceLevel, correct)
	}

	return TestResult{
		ScenarioID:  scenario.ID,
		Observation: scenario.Observation,
		Expected:    models.TaskID{TaskName: scenario.ExpectedTask, StepID: scenario.ExpectedStep},
		Best:        best,
		Correct:     correct,
		Reliable:    best.IsReliable(),
		Confidence:  best.ConfidenceLevel,
		Duration:    elapsed,
	}
}

// RunAll executes every built-in scenario
func (r *BenchmarkRunner) RunAll(ctx context.Context) []TestResult {
	scenarios := Scenarios()
	results := make([]TestResult, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, r.RunScenario(ctx, s))
	}
	return results
}
