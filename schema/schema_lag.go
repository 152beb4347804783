package schema

import "time"

// LagResult is the winning lag for one trailing window.
type LagResult struct {
	StartRow    int       `json:"start_row"`
	WindowEnd   int       `json:"window_end"`
	Lag         int       `json:"lag"`
	Correlation float64   `json:"correlation"`
	Date        time.Time `json:"date"` // date of WindowEnd, filled by the caller when known
}

// SkippedRow records a start row for which no lag candidate was valid.
type SkippedRow struct {
	StartRow int    `json:"start_row"`
	Reason   string `json:"reason"`
}

// ScanParams are the inputs that define a scan, apart from the series themselves.
type ScanParams struct {
	MaxLag     int `json:"max_lag"`
	WindowSize int `json:"window_size"`
	Neighbors  int `json:"neighbors"`
}

// ScanResult holds the ordered output of a scan for one country pair.
type ScanResult struct {
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	Params     ScanParams   `json:"params"`
	Results    []LagResult  `json:"results"`
	Skipped    []SkippedRow `json:"skipped"`
	Truncated  bool         `json:"truncated"`
	StopReason StopReason   `json:"stop_reason"`
}

// LagSummary condenses a ScanResult into a few numbers per pair.
type LagSummary struct {
	Source          string  `json:"source"`
	Target          string  `json:"target"`
	Windows         int     `json:"windows"`
	Skipped         int     `json:"skipped"`
	DominantLag     int     `json:"dominant_lag"`
	DominantShare   float64 `json:"dominant_share"`
	MedianLag       float64 `json:"median_lag"`
	MeanCorrelation float64 `json:"mean_correlation"`
	MaxCorrelation  float64 `json:"max_correlation"`
}

// MatrixResult is the set of summaries for all requested country pairs.
type MatrixResult struct {
	Params    ScanParams   `json:"params"`
	Summaries []LagSummary `json:"summaries"`
}

// ImputeResult holds imputed columns aligned to the dataset dates.
type ImputeResult struct {
	Dates     []time.Time     `json:"dates"`
	Neighbors int             `json:"neighbors"`
	Series    []ImputedSeries `json:"series"`
}
