// Package main provides a performance benchmarking tool for the lagscan CLI.
// It generates synthetic arrival datasets of increasing size, runs each command
// several times with and without the scan cache, treats the first cached run as
// cold and averages the rest as warm, and writes a CSV summary.
//
// Prerequisites:
// - lagscan binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory to write the generated datasets to (default: a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// DatasetSpec describes one synthetic dataset.
type DatasetSpec struct {
	Name      string
	Days      int
	Countries int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Datasets    []DatasetSpec
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "lagscan-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets: []DatasetSpec{
			{Name: "quarter", Days: 90, Countries: 4},
			{Name: "year", Days: 365, Countries: 6},
			{Name: "decade", Days: 3650, Countries: 8},
		},
	}

	if _, err := exec.LookPath("lagscan"); err != nil {
		fmt.Printf("Prerequisites check failed: lagscan binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("lagscan", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// writeDataset writes a CSV where each country trails the first by a few days.
func writeDataset(dir string, spec DatasetSpec) (string, error) {
	r := rand.New(rand.NewPCG(uint64(spec.Days), uint64(spec.Countries)))
	base := make([]float64, spec.Days)
	for i := range base {
		season := 500 * (1 + math.Sin(2*math.Pi*float64(i)/365))
		base[i] = season + 100*r.NormFloat64()
	}

	path := filepath.Join(dir, spec.Name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	header := []string{"Date"}
	for c := range spec.Countries {
		header = append(header, fmt.Sprintf("Country%02d", c))
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range spec.Days {
		row := []string{start.AddDate(0, 0, i).Format(time.DateOnly)}
		for c := range spec.Countries {
			lag := c * 2
			v := base[max(i-lag, 0)] * (1 - 0.1*float64(c))
			// Leave a few gaps so imputation is part of the measurement
			if r.IntN(50) == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprintf("%.0f", v))
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// runBenchmarks executes all benchmark tests across the generated datasets
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, spec := range config.Datasets {
		path, err := writeDataset(config.WorkDir, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to write dataset %s: %w", spec.Name, err)
		}
		fmt.Printf("Benchmarking %s (%d days, %d countries)\n", spec.Name, spec.Days, spec.Countries)

		result := runBenchmarkSuite(config, spec.Name, path, "scan", "pair scan", "--source Country00 --target Country01")
		results = append(results, result)

		result = runBenchmarkSuite(config, spec.Name, path, "matrix", "all-pairs matrix", "")
		results = append(results, result)
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, name, path, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     name,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a lagscan command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, command, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, path, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers), "--color", "no"}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("lagscan", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	completionPhrase := "Scan completed in"
	if command == "matrix" {
		completionPhrase = "Matrix completed in"
	}
	return strings.Contains(string(output), completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("lagscan_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"scan", "matrix"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
