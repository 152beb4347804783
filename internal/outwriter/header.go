package outwriter

import (
	"fmt"
	"path/filepath"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
)

// LogScanHeader prints a concise, 2-line header for a pair scan.
func LogScanHeader(cfg *contract.Config, ds *schema.Dataset) {
	fmt.Printf("🔎 Dataset: %s (%s → %s)\n", filepath.Base(cfg.DatasetPath), cfg.Source, cfg.Target)
	fmt.Printf("📅 Range: %s (%d days, window %d, max lag %d)\n", datasetRange(ds), ds.Len(), cfg.WindowSize, cfg.MaxLag)
}

// LogMatrixHeader prints a header for a multi-pair scan.
func LogMatrixHeader(cfg *contract.Config, ds *schema.Dataset, countries []string) {
	pairs := len(countries) * (len(countries) - 1)
	fmt.Printf("🔎 Dataset: %s (%d countries, %d pairs)\n", filepath.Base(cfg.DatasetPath), len(countries), pairs)
	fmt.Printf("📅 Range: %s (%d days, window %d, max lag %d)\n", datasetRange(ds), ds.Len(), cfg.WindowSize, cfg.MaxLag)
}

func datasetRange(ds *schema.Dataset) string {
	if ds.Len() == 0 {
		return "empty"
	}
	return fmt.Sprintf("%s → %s", formatDate(ds.Dates[0]), formatDate(ds.Dates[ds.Len()-1]))
}
