// ABOUTME: Aggregate metrics over benchmark results
// ABOUTME: Computes accuracy, reliable-match rate, and confidence tier counts
package matchbench

import (
	"fmt"
	"time"

	"github.com/tasklens/stepmatch/internal/models"
)

// Report summarizes a full benchmark run
type Report struct {
	Total         int                            `json:"total"`
	Correct       int                            `json:"correct"`
	Accuracy      float64                        `json:"accuracy"`
	ReliableRate  float64                        `json:"reliable_rate"`
	TierCounts    map[models.ConfidenceLevel]int `json:"tier_counts"`
	MeanLatency   time.Duration                  `json:"mean_latency_ns"`
	FailedResults []TestResult                   `json:"failed_results,omitempty"`
}

// Summarize aggregates per-scenario results into a report
func Summarize(results []TestResult) Report {
	report := Report{
		Total: len(results),
		TierCounts: map[models.ConfidenceLevel]int{
			models.ConfidenceHigh:   0,
			models.ConfidenceMedium: 0,
			models.ConfidenceLow:    0,
			models.ConfidenceNone:   0,
		},
	}
	if len(results) == 0 {
		return report
	}

	reliable := 0
	var totalLatency time.Duration
	for _, r := range results {
		if r.Correct {
			report.Correct++
		} else {
			report.FailedResults = append(report.FailedResults, r)
		}
		if r.Reliable {
			reliable++
		}
		report.TierCounts[r.Confidence]++
		totalLatency += r.Duration
	}

	report.Accuracy = float64(report.Correct) / float64(report.Total)
	report.ReliableRate = float64(reliable) / float64(report.Total)
	report.MeanLatency = totalLatency / time.Duration(report.Total)
	return report
}

// Print writes a human-readable summary to stdout
func (r Report) Print() {
	fmt.Printf("\n========================================\n")
	fmt.Printf("MATCH BENCHMARK SUMMARY\n")
	fmt.Printf("========================================\n")
	fmt.Printf("Scenarios:      %d\n", r.Total)
	fmt.Printf("Top-1 accuracy: %.1f%% (%d/%d)\n", r.Accuracy*100, r.Correct, r.Total)
	fmt.Printf("Reliable rate:  %.1f%%\n", r.ReliableRate*100)
	fmt.Printf("Mean latency:   %s\n", r.MeanLatency)
	fmt.Printf("Confidence tiers: high=%d medium=%d low=%d none=%d\n",
		r.TierCounts[models.ConfidenceHigh],
		r.TierCounts[models.ConfidenceMedium],
		r.TierCounts[models.ConfidenceLow],
		r.TierCounts[models.ConfidenceNone])
	for _, f := range r.FailedResults {
		fmt.Printf("  MISS %s: expected %s, got %s:%d (%.3f)\n",
			f.ScenarioID, f.Expected.String(), f.Best.TaskName, f.Best.StepID, f.Best.Similarity)
	}
}
