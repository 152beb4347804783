package iocache

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/lagscan/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format(time.DateTime))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format(time.DateTime))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintAnalysisStatus prints run history status information.
func PrintAnalysisStatus(status schema.AnalysisStatus) {
	fmt.Printf("Analysis Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format(time.DateTime))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format(time.DateTime))
		fmt.Printf("Lag Results: %d\n", status.TotalLagResults)
		fmt.Printf("Skipped Rows: %d\n", status.TotalSkippedRows)
	}
	fmt.Println("Table Rows:")
	for _, table := range slices.Sorted(maps.Keys(status.TableRowCounts)) {
		fmt.Printf("  %s: %d rows\n", table, status.TableRowCounts[table])
	}
}
