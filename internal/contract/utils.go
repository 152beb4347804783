package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/lagscan/schema"
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgGreen, color.Bold) // StrongColor marks a dependable lag signal.
	ModerateColor = color.New(color.FgYellow)            // ModerateColor marks a usable but noisy signal.
	WeakColor     = color.New(color.FgCyan)              // WeakColor marks a signal close to chance.
	NoneColor     = color.New(color.FgRed)               // NoneColor marks no positive correlation.
)

// GetPlainLabel returns the strength label for a correlation coefficient.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(correlation float64) string {
	return string(schema.GetStrength(correlation))
}

// GetColorLabel returns a colored strength label for console output (table).
func GetColorLabel(correlation float64) string {
	strength := schema.GetStrength(correlation)
	text := string(strength)

	switch strength {
	case schema.StrongStrength:
		return StrongColor.Sprint(text)
	case schema.ModerateStrength:
		return ModerateColor.Sprint(text)
	case schema.WeakStrength:
		return WeakColor.Sprint(text)
	default:
		return NoneColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".lagscan_cache.db"
	}
	return filepath.Join(homeDir, ".lagscan_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".lagscan_analysis.db"
	}
	return filepath.Join(homeDir, ".lagscan_analysis.db")
}

// TruncateName truncates a column name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is space for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
