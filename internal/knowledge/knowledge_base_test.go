// ABOUTME: Tests for the knowledge base façade
// ABOUTME: Exercises initialization, matching, reload, and introspection with fakes
package knowledge

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/tasklens/stepmatch/internal/models"
	"github.com/tasklens/stepmatch/internal/storage"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

// hashEmbedder maps text deterministically onto a small vector so that
// identical texts always land on identical embeddings
type hashEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (h *hashEmbedder) embed(text string) []float64 {
	vec := make([]float64, 8)
	for i, r := range text {
		vec[(i+int(r))%8] += float64(r%13) + 1
	}
	return vec
}

func (h *hashEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	h.mu.Lock()
	h.calls++
	fail := h.fail
	h.mu.Unlock()
	if fail {
		return nil, errors.New("embedder unavailable")
	}
	return h.embed(text), nil
}

func (h *hashEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := h.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (h *hashEmbedder) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *hashEmbedder) setFail(fail bool) {
	h.mu.Lock()
	h.fail = fail
	h.mu.Unlock()
}

const tireYAML = `
task_name: change_tire
display_name: Change a Flat Tire
description: Replace a flat tire with the spare
steps:
  - step_id: 1
    title: Loosen lug nuts
    task_description: Loosen each lug nut half a turn with the lug wrench
    tools_needed: [lug wrench]
    completion_indicators: [nuts turn freely]
    visual_cues: [lug wrench on wheel nut]
    estimated_duration: 3 minutes
  - step_id: 2
    title: Jack up the car
    task_description: Raise the car with the jack until the tire clears the ground
    tools_needed: [jack]
    completion_indicators: [tire off the ground]
    visual_cues: [jack under car frame]
    estimated_duration: 5 minutes
`

const coffeeYAML = `
task_name: pour_over_coffee
display_name: Brew Pour-Over Coffee
description: Brew a cup of coffee with a pour-over cone
steps:
  - step_id: 1
    title: Grind the beans
    task_description: Grind coffee beans to a medium-fine consistency
    tools_needed: [burr grinder]
    completion_indicators: [grounds resemble coarse sand]
    visual_cues: [beans in grinder hopper]
    estimated_duration: 2 minutes
`

func writeTasksDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestKB(t *testing.T) (*KnowledgeBase, *hashEmbedder, string) {
	t.Helper()
	dir := writeTasksDir(t, map[string]string{
		"change_tire.yaml":      tireYAML,
		"pour_over_coffee.yaml": coffeeYAML,
	})
	embedder := &hashEmbedder{}
	kb := New(taskdef.NewDirLoader(dir), embedder, storage.NewMemoryVectorStore(0), nil, Options{})
	return kb, embedder, dir
}

func TestInitializeWithPrecompute(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)

	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if got := kb.GetAllTasks(); !reflect.DeepEqual(got, []string{"change_tire", "pour_over_coffee"}) {
		t.Errorf("GetAllTasks() = %v", got)
	}

	health := kb.HealthCheck()
	if health.Status != StatusHealthy {
		t.Errorf("health after precompute = %s, issues: %v", health.Status, health.Issues)
	}
	if health.TaskCount != 2 || health.StepCount != 3 {
		t.Errorf("counts = %d tasks / %d steps", health.TaskCount, health.StepCount)
	}
}

func TestFindMatchingStepExactStepText(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	// Querying with a step's own embedding text guarantees a cosine of 1
	_, step := kb.StepByTask("change_tire", 2)
	if step == nil {
		t.Fatal("step 2 missing")
	}

	result := kb.FindMatchingStep(ctx, step.EmbeddingText(), "")
	if result.TaskName != "change_tire" || result.StepID != 2 {
		t.Errorf("best match = %s:%d, want change_tire:2", result.TaskName, result.StepID)
	}
	if result.ConfidenceLevel != models.ConfidenceHigh {
		t.Errorf("confidence = %q", result.ConfidenceLevel)
	}
}

func TestFindMatchingStepAbsorbsFailures(t *testing.T) {
	ctx := context.Background()
	kb, embedder, _ := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	embedder.setFail(true)
	result := kb.FindMatchingStep(ctx, "any observation", "")
	if result.IsMatch() {
		t.Errorf("expected no-match sentinel on embedder failure, got %s:%d", result.TaskName, result.StepID)
	}
	if result.ConfidenceLevel != models.ConfidenceNone {
		t.Errorf("sentinel confidence = %q", result.ConfidenceLevel)
	}
}

func TestFindMatchingStepBlankObservation(t *testing.T) {
	ctx := context.Background()
	kb, embedder, _ := newTestKB(t)

	// No precompute: a blank observation must not trigger lazy indexing
	if err := kb.Initialize(ctx, false); err != nil {
		t.Fatal(err)
	}

	result := kb.FindMatchingStep(ctx, "   \t\n", "")
	if result.IsMatch() {
		t.Errorf("blank observation matched %s:%d", result.TaskName, result.StepID)
	}
	if result.ConfidenceLevel != models.ConfidenceNone {
		t.Errorf("sentinel confidence = %q", result.ConfidenceLevel)
	}
	if got := embedder.callCount(); got != 0 {
		t.Errorf("embedding function invoked %d times on blank observation", got)
	}
}

func TestFindMultipleMatchesLogsQueryID(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	kb.FindMultipleMatches(ctx, "lug wrench on the wheel nut", "", 1)

	logged := buf.String()
	if !strings.Contains(logged, "] query ") || !strings.Contains(logged, "best ") {
		t.Errorf("success path did not log the query id: %q", logged)
	}
}

func TestFindMultipleMatchesTaskFilter(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	results := kb.FindMultipleMatches(ctx, "jack under the car frame lifting", "change_tire", 10)
	if len(results) == 0 {
		t.Fatal("no results with task filter")
	}
	for _, r := range results {
		if r.TaskName != "change_tire" {
			t.Errorf("filter leaked task %s", r.TaskName)
		}
	}

	if got := kb.FindMultipleMatches(ctx, "anything", "no_such_task", 5); len(got) != 0 {
		t.Errorf("unknown task filter returned %d results", len(got))
	}
}

func TestFindMultipleMatchesLazyIndexing(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)

	// No precompute: the first query must index on demand
	if err := kb.Initialize(ctx, false); err != nil {
		t.Fatal(err)
	}

	health := kb.HealthCheck()
	if health.Status != StatusWarning {
		t.Errorf("expected warning before first query, got %s", health.Status)
	}

	results := kb.FindMultipleMatches(ctx, "beans in the grinder hopper", "pour_over_coffee", 1)
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].TaskName != "pour_over_coffee" {
		t.Errorf("match = %s", results[0].TaskName)
	}
}

func TestFindMultipleMatchesDefaultTopK(t *testing.T) {
	ctx := context.Background()
	dir := writeTasksDir(t, map[string]string{"change_tire.yaml": tireYAML})
	kb := New(taskdef.NewDirLoader(dir), &hashEmbedder{}, storage.NewMemoryVectorStore(0), nil, Options{DefaultTopK: 1})
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	// topK <= 0 falls back to the configured default of 1
	results := kb.FindMultipleMatches(ctx, "lug wrench on the wheel nut", "", 0)
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestGetStepDetailsAndNextStepInfo(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, false); err != nil {
		t.Fatal(err)
	}

	step := kb.GetStepDetails("change_tire", 1)
	if step == nil || step.Title != "Loosen lug nuts" {
		t.Errorf("GetStepDetails = %+v", step)
	}
	if kb.GetStepDetails("change_tire", 99) != nil {
		t.Error("expected nil for unknown step")
	}
	if kb.GetStepDetails("missing", 1) != nil {
		t.Error("expected nil for unknown task")
	}

	info := kb.GetNextStepInfo("change_tire", 1)
	if info == nil {
		t.Fatal("GetNextStepInfo returned nil")
	}
	if info.IsLastStep || info.NextStep == nil || info.NextStep.StepID != 2 {
		t.Errorf("next step info = %+v", info)
	}

	last := kb.GetNextStepInfo("change_tire", 2)
	if last == nil || !last.IsLastStep || last.NextStep != nil {
		t.Errorf("last step info = %+v", last)
	}
	if last.TotalSteps != 2 {
		t.Errorf("total steps = %d", last.TotalSteps)
	}
}

func TestGetTaskSummary(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, false); err != nil {
		t.Fatal(err)
	}

	summary := kb.GetTaskSummary("change_tire")
	if summary == nil {
		t.Fatal("summary is nil")
	}
	if summary.DisplayName != "Change a Flat Tire" || summary.TotalSteps != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if !reflect.DeepEqual(summary.Tools, []string{"lug wrench", "jack"}) {
		t.Errorf("tools = %v", summary.Tools)
	}

	if kb.GetTaskSummary("missing") != nil {
		t.Error("expected nil for unknown task")
	}
}

func TestReloadTask(t *testing.T) {
	ctx := context.Background()
	kb, _, dir := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	// Reload with the unchanged file is idempotent
	before := kb.GetTaskSummary("change_tire")
	if err := kb.ReloadTask(ctx, "change_tire"); err != nil {
		t.Fatalf("ReloadTask failed: %v", err)
	}
	if !reflect.DeepEqual(before, kb.GetTaskSummary("change_tire")) {
		t.Error("reload of unchanged file altered the summary")
	}

	// Edit the definition and reload; the new title must be visible
	updated := strings.Replace(tireYAML, "Loosen lug nuts", "Break the lug nuts loose", 1)
	if err := os.WriteFile(filepath.Join(dir, "change_tire.yaml"), []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := kb.ReloadTask(ctx, "change_tire"); err != nil {
		t.Fatalf("ReloadTask failed after edit: %v", err)
	}
	if step := kb.GetStepDetails("change_tire", 1); step == nil || step.Title != "Break the lug nuts loose" {
		t.Errorf("reloaded step = %+v", step)
	}

	if err := kb.ReloadTask(ctx, "never_existed"); err == nil {
		t.Error("expected error reloading unknown task")
	}
}

func TestAddNewTask(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	extra := writeTasksDir(t, map[string]string{"hang_shelf.yaml": `
task_name: hang_shelf
display_name: Hang a Wall Shelf
description: Mount a floating shelf on drywall
steps:
  - step_id: 1
    title: Mark the holes
    task_description: Level the bracket and mark both screw holes
    tools_needed: [level, pencil]
    completion_indicators: [two marks on the wall]
    visual_cues: [pencil marking wall]
    estimated_duration: 2 minutes
`})

	if err := kb.AddNewTask(ctx, filepath.Join(extra, "hang_shelf.yaml")); err != nil {
		t.Fatalf("AddNewTask failed: %v", err)
	}
	if kb.GetTaskSummary("hang_shelf") == nil {
		t.Error("new task not registered")
	}

	// Adding the same task twice is rejected
	if err := kb.AddNewTask(ctx, filepath.Join(extra, "hang_shelf.yaml")); err == nil {
		t.Error("expected duplicate task error")
	}
}

func TestClearCacheReindexesOnDemand(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)
	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}

	if err := kb.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if kb.GetSystemStats().CacheStats.TotalEmbeddings != 0 {
		t.Error("cache not empty after clear")
	}

	// Next query re-embeds lazily and still matches
	result := kb.FindMatchingStep(ctx, "jack under car frame raising the car", "change_tire")
	if !result.IsMatch() {
		t.Error("no match after cache clear")
	}
}

func TestGetSystemStats(t *testing.T) {
	ctx := context.Background()
	kb, _, _ := newTestKB(t)

	stats := kb.GetSystemStats()
	if stats.Initialized {
		t.Error("uninitialized knowledge base reports initialized")
	}

	if err := kb.Initialize(ctx, true); err != nil {
		t.Fatal(err)
	}
	stats = kb.GetSystemStats()
	if !stats.Initialized || stats.TaskCount != 2 || stats.StepCount != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.CacheStats.TotalEmbeddings != 3 {
		t.Errorf("total embeddings = %d, want 3", stats.CacheStats.TotalEmbeddings)
	}
	if stats.CacheStats.Lookups() == 0 {
		t.Error("precompute produced no cache lookups")
	}
}
