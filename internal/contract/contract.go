// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/lagscan/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetScanStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking scan runs and their lag results.
type AnalysisStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalPairs, totalResults int) error

	// RecordScanResult stores every window of a scan, skipped windows included
	RecordScanResult(runID int64, result schema.ScanResult) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.ScanRunRecord, error)

	// GetAllLagResults returns every recorded lag result
	GetAllLagResults() ([]schema.LagResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
