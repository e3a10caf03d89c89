// ABOUTME: Matching engine turning observations into confidence-scored step matches
// ABOUTME: Embeds the observation, queries the vector store, and extracts matched cues
package match

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/tasklens/stepmatch/internal/models"
	"github.com/tasklens/stepmatch/internal/storage"
)

// Embedder produces an embedding vector for a single observation
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// StepSource resolves vector-store metadata back to step knowledge
type StepSource interface {
	StepByTask(taskName string, stepID int) (*models.TaskKnowledge, *models.TaskStep)
}

// TieBreak selects how equal-similarity results are ordered
type TieBreak string

const (
	// TieBreakStore keeps the vector store's native nearest-neighbor order
	TieBreakStore TieBreak = "store"
	// TieBreakStepID orders equal similarities by ascending step id
	TieBreakStepID TieBreak = "step_id"
)

// minCueTokenLen filters out short stopword-like tokens when extracting
// matched cues
const minCueTokenLen = 4

// Engine matches observation text against the embedded step library.
// Stateless per call; safe for concurrent use.
type Engine struct {
	embedder Embedder
	store    storage.VectorStore
	source   StepSource
	tieBreak TieBreak
}

// NewEngine creates a matching engine over the given collaborators
func NewEngine(embedder Embedder, store storage.VectorStore, source StepSource, tieBreak TieBreak) *Engine {
	if tieBreak == "" {
		tieBreak = TieBreakStore
	}
	return &Engine{
		embedder: embedder,
		store:    store,
		source:   source,
		tieBreak: tieBreak,
	}
}

// FindBestMatch returns up to topK matches for an observation, best first.
// An empty or whitespace-only observation returns an empty list without
// calling the embedder. A non-empty taskName restricts matching to that
// task. Results keep the store's nearest-neighbor order unless the engine
// was configured with a different tie-break.
func (e *Engine) FindBestMatch(ctx context.Context, observation, taskName string, topK int) ([]models.MatchResult, error) {
	if strings.TrimSpace(observation) == "" || topK <= 0 {
		return []models.MatchResult{}, nil
	}

	vector, err := e.embedder.GenerateEmbedding(ctx, observation)
	if err != nil {
		return nil, err
	}

	hits, err := e.store.Query(ctx, vector, topK, taskName)
	if err != nil {
		return nil, err
	}

	results := make([]models.MatchResult, 0, len(hits))
	for _, hit := range hits {
		tk, step := e.source.StepByTask(hit.Metadata.TaskName, hit.Metadata.StepID)
		if tk == nil || step == nil {
			// Stale vector for knowledge that has been reloaded away
			log.Printf("[Match] Dropping stale hit %s:%d", hit.Metadata.TaskName, hit.Metadata.StepID)
			continue
		}

		similarity := 1 - hit.Distance
		if similarity < 0 {
			similarity = 0
		}
		if similarity > 1 {
			similarity = 1
		}

		results = append(results, models.MatchResult{
			StepID:               step.StepID,
			TaskName:             tk.TaskName,
			TaskDescription:      step.Description,
			ToolsNeeded:          step.ToolsNeeded,
			CompletionIndicators: step.CompletionIndicators,
			VisualCues:           step.VisualCues,
			Similarity:           similarity,
			ConfidenceLevel:      models.ConfidenceForSimilarity(similarity),
			MatchedCues:          MatchedCues(step.VisualCues, observation),
		})
	}

	if e.tieBreak == TieBreakStepID {
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Similarity != results[j].Similarity {
				return results[i].Similarity > results[j].Similarity
			}
			return results[i].StepID < results[j].StepID
		})
	}

	return results, nil
}

// MatchedCues returns the subset of a step's visual cues textually present
// in the observation. A cue matches when any of its normalized tokens
// (longer than three characters) occurs as a substring of the lowercased
// observation. Used for explainability, never for scoring.
func MatchedCues(visualCues []string, observation string) []string {
	obs := strings.ToLower(observation)
	matched := []string{}

	for _, cue := range visualCues {
		for _, token := range cueTokens(cue) {
			if strings.Contains(obs, token) {
				matched = append(matched, cue)
				break
			}
		}
	}

	return matched
}

// cueTokens normalizes a cue into lowercase tokens worth matching on
func cueTokens(cue string) []string {
	fields := strings.FieldsFunc(strings.ToLower(cue), func(r rune) bool {
		switch r {
		case ' ', '\t', ',', ';', '.', '-', '_', '/':
			return true
		}
		return false
	})

	var tokens []string
	for _, f := range fields {
		if len(f) >= minCueTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
