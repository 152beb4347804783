package schema

import "time"

// ScanRunRecord represents a row from the lagscan_runs table.
type ScanRunRecord struct {
	RunID         int64
	RunUUID       string
	Command       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalPairs    int32
	TotalResults  int32
	ConfigParams  *string
}

// LagResultRecord represents a row from the lagscan_lag_results table.
type LagResultRecord struct {
	RunID       int64
	Source      string
	Target      string
	StartRow    int32
	WindowEnd   int32
	WindowDate  *time.Time
	Lag         int32
	Correlation float64
	Skipped     bool
	Reason      *string
}
