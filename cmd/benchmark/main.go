// ABOUTME: Command-line benchmark runner for offline match-quality tests
// ABOUTME: Executes labeled observation scenarios and outputs JSON results
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tasklens/stepmatch/benchmarks/matchbench"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run a single scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	ctx := context.Background()

	fmt.Println("========================================")
	fmt.Println("StepMatch Match Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := matchbench.NewBenchmarkRunner(ctx, *verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	var results []matchbench.TestResult
	if *scenarioID == "" {
		fmt.Println("Running all match benchmark scenarios...")
		results = runner.RunAll(ctx)
	} else {
		scenario, ok := findScenario(*scenarioID)
		if !ok {
			log.Fatalf("Unknown scenario %q", *scenarioID)
		}
		results = []matchbench.TestResult{runner.RunScenario(ctx, scenario)}
	}

	report := matchbench.Summarize(results)
	report.Print()

	payload := struct {
		Report  matchbench.Report       `json:"report"`
		Results []matchbench.TestResult `json:"results"`
	}{Report: report, Results: results}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	fmt.Printf("\nResults written to %s\n", *outputPath)
}

func findScenario(id string) (matchbench.Scenario, bool) {
	for _, s := range matchbench.Scenarios() {
		if s.ID == id {
			return s, true
		}
	}
	return matchbench.Scenario{}, false
}
