// Package main provides a performance benchmarking tool for the Planbench CLI.
// It measures wall-clock times of planbench runs across scenarios and steering modes,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - planbench binary installed and available in PATH
// - Scenario files in the specified scenario directory
//
// Usage: go run benchmark/main.go [scenario-dir]
//
//	scenario-dir: Directory containing scenario YAML files (e.g. examples/scenarios)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark suite (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Scenario    string
	Steering    string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ScenarioDir  string
	Timeout      time.Duration
	Workers      int
	NoStoreRuns  int
	StoreRuns    int
	Steering     []string
	Planners     map[string]string
	StoreConnect string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [scenario-dir]\n", os.Args[0])
		os.Exit(1)
	}
	scenarioDir := os.Args[1]

	config := BenchmarkConfig{
		ScenarioDir:  scenarioDir,
		Timeout:      2 * time.Minute,
		Workers:      4,
		NoStoreRuns:  3,
		StoreRuns:    4,
		Steering:     []string{"linear", "dubins", "reeds_shepp"},
		StoreConnect: filepath.Join(os.TempDir(), "planbench_benchmark.db"),
		Planners: map[string]string{
			"corridor":   "direct,detour,SBPL_lattice,broken",
			"open_field": "direct,staged,slow",
		},
	}

	scenarios, err := checkPrerequisites(config)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Start from an empty run store
	fmt.Printf("Clearing run store...\n")
	clearCmd := exec.Command("planbench", "runs", "clear", "--store-backend", "sqlite", "--store-db-connect", config.StoreConnect)
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear run store: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Run store cleared successfully\n")
	}

	results := runBenchmarks(config, scenarios)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the planbench binary and scenario files exist
func checkPrerequisites(config BenchmarkConfig) ([]string, error) {
	if _, err := exec.LookPath("planbench"); err != nil {
		return nil, fmt.Errorf("planbench binary not found in PATH")
	}

	scenarios, err := filepath.Glob(filepath.Join(config.ScenarioDir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", config.ScenarioDir)
	}
	return scenarios, nil
}

// runBenchmarks executes all benchmark suites across scenarios and steering modes
func runBenchmarks(config BenchmarkConfig, scenarios []string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d scenarios, %d steering modes, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(scenarios), len(config.Steering), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, path := range scenarios {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fmt.Printf("Benchmarking %s\n", name)

		for _, steering := range config.Steering {
			result := runBenchmarkSuite(config, name, path, steering)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmarkSuite runs both no-store and store benchmarks for one scenario and steering mode
func runBenchmarkSuite(config BenchmarkConfig, name, path, steering string) BenchmarkResult {
	fmt.Printf("Running %s with %s steering\n", name, steering)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, name, path, steering, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-store runs
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: SQLite store runs
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Scenario:    name,
		Steering:    steering,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes planbench run multiple times with the given store backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, name, path, steering, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"run", path,
		"--steering", steering,
		"--workers", fmt.Sprint(config.Workers),
		"--store-backend", storeBackend,
	}
	if storeBackend == "sqlite" {
		args = append(args, "--store-db-connect", config.StoreConnect)
	}
	if planners, ok := config.Planners[name]; ok {
		args = append(args, "--planners", planners)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("planbench", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates a completed evaluation
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Evaluated") &&
		strings.Contains(outputStr, "plans in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/planbench_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"scenario", "steering", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Scenario, result.Steering, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, steering := range config.Steering {
		printSteeringSummary(results, steering, fmt.Sprintf("Steering %s:", steering))
	}

	fmt.Printf("Benchmark script completed successfully\n")
}

// printSteeringSummary displays results for a specific steering mode
func printSteeringSummary(results []BenchmarkResult, steering, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Steering == steering {
			fmt.Printf("  %-12s: No-store: %s, Cold: %s, Warm: %s\n", result.Scenario, result.NoStoreTime, result.ColdTime, result.WarmTime)
		}
	}
}
