// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScan prints a windowed scan using the configured output format.
func (ow *OutWriter) WriteScan(result schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	return WriteScanResults(result, cfg, duration)
}

// WriteBestLag prints a single best-lag result using the configured output format.
func (ow *OutWriter) WriteBestLag(result schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	return WriteBestLagResult(result, cfg, duration)
}

// WriteMatrix prints pair summaries using the configured output format.
func (ow *OutWriter) WriteMatrix(result schema.MatrixResult, cfg *contract.Config, duration time.Duration) error {
	return WriteMatrixResults(result, cfg, duration)
}

// WriteImpute prints imputed columns using the configured output format.
func (ow *OutWriter) WriteImpute(result schema.ImputeResult, cfg *contract.Config, duration time.Duration) error {
	return WriteImputeResults(result, cfg, duration)
}

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxTableNameWidth calculates the maximum width for a country name column
// in the matrix table, which shows two of them per row.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	// Numeric columns with borders/padding
	baseWidth := 85

	available := (terminalWidth(cfg) - baseWidth) / 2
	if available < 8 {
		return 8
	}
	if available > 30 {
		return 30
	}
	return available
}
