package contract

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/huangsam/lagscan/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 3
	MaxPrecision     = 6
	MaxLagLimit      = 365
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ErrPairRequired is returned when a command needs both --source and --target.
var ErrPairRequired = errors.New("--source and --target are required")

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a scan.
// This struct remains the "final, validated" config.
type Config struct {
	DatasetPath string
	DateColumn  string
	Sheet       string

	Source    string
	Target    string
	Countries []string

	MaxLag     int
	WindowSize int
	Neighbors  int
	StartRow   int
	WindowEnd  int // -1 means the last row

	ResultLimit int // 0 keeps every pair

	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  string
	LogFormat string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DatasetPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	DateColumn        string `mapstructure:"date-column"`
	Sheet             string `mapstructure:"sheet"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Workers           int    `mapstructure:"workers"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	LogLevel          string `mapstructure:"log-level"`
	LogFormat         string `mapstructure:"log-format"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`

	// --- Scan parameters shared by scan, bestlag, matrix and impute ---
	Source     string `mapstructure:"source"`
	Target     string `mapstructure:"target"`
	Countries  string `mapstructure:"countries"`
	MaxLag     int    `mapstructure:"max-lag"`
	WindowSize int    `mapstructure:"window-size"`
	Neighbors  int    `mapstructure:"neighbors"`

	// --- Fields from matrixCmd.Flags() ---
	Limit int `mapstructure:"limit"`

	// --- Fields from bestlagCmd.Flags() ---
	StartRow  int `mapstructure:"start-row"`
	WindowEnd int `mapstructure:"window-end"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Countries != nil {
		clone.Countries = make([]string, len(c.Countries))
		copy(clone.Countries, c.Countries)
	}
	return &clone
}

// RequirePair checks that a source and target were given and differ.
func (c *Config) RequirePair() error {
	if c.Source == "" || c.Target == "" {
		return ErrPairRequired
	}
	if c.Source == c.Target {
		return fmt.Errorf("source and target must differ (both are %q)", c.Source)
	}
	return nil
}

// RequireWindow checks that a sliding window can hold every lag candidate.
// Single-window commands are bounded by their own start row and window end.
func (c *Config) RequireWindow() error {
	if c.MaxLag >= c.WindowSize {
		return fmt.Errorf("max-lag (%d) must be smaller than window-size (%d)", c.MaxLag, c.WindowSize)
	}
	return nil
}

// Params returns the parameters that identify a scan for caching and tracking.
func (c *Config) Params() schema.ScanParams {
	return schema.ScanParams{MaxLag: c.MaxLag, WindowSize: c.WindowSize, Neighbors: c.Neighbors}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processScanParams(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveDatasetPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseCountries splits a comma-separated country list, dropping blanks and duplicates.
func ParseCountries(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// validateSimpleInputs processes and validates output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DateColumn = strings.TrimSpace(input.DateColumn)
	cfg.Sheet = input.Sheet
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	cfg.LogLevel = strings.ToLower(input.LogLevel)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	if cfg.LogFormat != "" && cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}
	return nil
}

// processScanParams validates the lag search parameters.
func processScanParams(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = strings.TrimSpace(input.Source)
	cfg.Target = strings.TrimSpace(input.Target)
	cfg.Countries = ParseCountries(input.Countries)

	if input.MaxLag < 0 || input.MaxLag > MaxLagLimit {
		return fmt.Errorf("max-lag must be between 0 and %d (received %d)", MaxLagLimit, input.MaxLag)
	}
	cfg.MaxLag = input.MaxLag

	if input.WindowSize < 2 {
		return fmt.Errorf("window-size must be at least 2 (received %d)", input.WindowSize)
	}
	cfg.WindowSize = input.WindowSize

	if input.Neighbors < 1 {
		return fmt.Errorf("neighbors must be at least 1 (received %d)", input.Neighbors)
	}
	cfg.Neighbors = input.Neighbors

	if input.StartRow < 0 {
		return fmt.Errorf("start-row must not be negative (received %d)", input.StartRow)
	}
	cfg.StartRow = input.StartRow
	if input.WindowEnd < -1 {
		return fmt.Errorf("window-end must be -1 (last row) or a row index (received %d)", input.WindowEnd)
	}
	cfg.WindowEnd = input.WindowEnd

	if input.Limit < 0 {
		return fmt.Errorf("limit must not be negative (received %d)", input.Limit)
	}
	cfg.ResultLimit = input.Limit
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Cache and analysis tables live side by side only on separate SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// resolveDatasetPath checks that the positional dataset argument names a readable file.
func resolveDatasetPath(cfg *Config, input *ConfigRawInput) error {
	if input.DatasetPathStr == "" {
		return errors.New("a dataset path is required")
	}
	info, err := os.Stat(input.DatasetPathStr)
	if err != nil {
		return fmt.Errorf("cannot read dataset: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("dataset path %s is a directory", input.DatasetPathStr)
	}
	cfg.DatasetPath = input.DatasetPathStr
	return nil
}

// RevalidateScan re-runs dataset and scan parameter validation on a config
// whose fields were overridden after ProcessAndValidate, as the MCP tools do.
func RevalidateScan(cfg *Config) error {
	input := &ConfigRawInput{
		DatasetPathStr: cfg.DatasetPath,
		Source:         cfg.Source,
		Target:         cfg.Target,
		Countries:      strings.Join(cfg.Countries, ","),
		MaxLag:         cfg.MaxLag,
		WindowSize:     cfg.WindowSize,
		Neighbors:      cfg.Neighbors,
		Limit:          cfg.ResultLimit,
		StartRow:       cfg.StartRow,
		WindowEnd:      cfg.WindowEnd,
	}
	if err := resolveDatasetPath(cfg, input); err != nil {
		return err
	}
	return processScanParams(cfg, input)
}
