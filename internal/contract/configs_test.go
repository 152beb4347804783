package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/lagscan/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation against the given dataset path.
func validInput(datasetPath string) *ConfigRawInput {
	return &ConfigRawInput{
		DatasetPathStr: datasetPath,
		Output:         "text",
		Precision:      DefaultPrecision,
		Workers:        4,
		Color:          "yes",
		CacheBackend:   "none",
		MaxLag:         schema.DefaultMaxLag,
		WindowSize:     schema.DefaultWindowSize,
		Neighbors:      schema.DefaultNeighbors,
		WindowEnd:      -1,
	}
}

func tempDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arrivals.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,A,B\n2016-01-01,1,2\n"), 0o600))
	return path
}

func TestProcessAndValidate(t *testing.T) {
	path := tempDataset(t)

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, ""},
		{"json output", func(in *ConfigRawInput) { in.Output = "JSON" }, ""},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "xml" }, "invalid output format"},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, "--output-file is required"},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, "workers must be greater than 0"},
		{"precision too high", func(in *ConfigRawInput) { in.Precision = 9 }, "precision must be between"},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }, "invalid --color value"},
		{"bad log format", func(in *ConfigRawInput) { in.LogFormat = "xml" }, "invalid log format"},
		{"negative lag", func(in *ConfigRawInput) { in.MaxLag = -1 }, "max-lag must be between"},
		{"lag above window is left to the command", func(in *ConfigRawInput) { in.MaxLag, in.WindowSize = 40, 30 }, ""},
		{"tiny window", func(in *ConfigRawInput) { in.WindowSize = 1 }, "window-size must be at least 2"},
		{"zero neighbors", func(in *ConfigRawInput) { in.Neighbors = 0 }, "neighbors must be at least 1"},
		{"negative start row", func(in *ConfigRawInput) { in.StartRow = -3 }, "start-row must not be negative"},
		{"bad window end", func(in *ConfigRawInput) { in.WindowEnd = -2 }, "window-end must be"},
		{"negative limit", func(in *ConfigRawInput) { in.Limit = -1 }, "limit must not be negative"},
		{"invalid cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, "invalid cache backend"},
		{"mysql without dsn", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, "connection string is required"},
		{"invalid analysis backend", func(in *ConfigRawInput) { in.AnalysisBackend = "mongo" }, "invalid analysis backend"},
		{"same sqlite file", func(in *ConfigRawInput) {
			in.CacheBackend, in.AnalysisBackend = "sqlite", "sqlite"
			in.CacheDBConnect, in.AnalysisDBConnect = "x.db", "x.db"
		}, "different SQLite database files"},
		{"missing dataset", func(in *ConfigRawInput) { in.DatasetPathStr = "" }, "dataset path is required"},
		{"dataset not found", func(in *ConfigRawInput) { in.DatasetPathStr = path + ".gone" }, "cannot read dataset"},
		{"dataset is directory", func(in *ConfigRawInput) { in.DatasetPathStr = filepath.Dir(path) }, "is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(path)
			tt.mutate(in)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, in)
			if tt.expectError == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectError)
		})
	}
}

func TestProcessAndValidatePopulatesConfig(t *testing.T) {
	path := tempDataset(t)
	in := validInput(path)
	in.Source = " Greece "
	in.Target = "Macedonia"
	in.Countries = "Greece, Italy,,Greece"
	in.Output = "CSV"
	in.Color = "no"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))
	assert.Equal(t, path, cfg.DatasetPath)
	assert.Equal(t, "Greece", cfg.Source)
	assert.Equal(t, []string{"Greece", "Italy"}, cfg.Countries)
	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, -1, cfg.WindowEnd)
	assert.Equal(t, schema.ScanParams{MaxLag: 20, WindowSize: 30, Neighbors: 5}, cfg.Params())
}

func TestRevalidateScan(t *testing.T) {
	path := tempDataset(t)
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput(path)))

	override := cfg.Clone()
	override.MaxLag, override.WindowSize = 7, 14
	override.Countries = []string{"A", "B"}
	require.NoError(t, RevalidateScan(override))
	assert.Equal(t, []string{"A", "B"}, override.Countries)

	override.MaxLag = -1
	assert.ErrorContains(t, RevalidateScan(override), "max-lag must be between")

	override = cfg.Clone()
	override.DatasetPath = path + ".gone"
	assert.ErrorContains(t, RevalidateScan(override), "cannot read dataset")
}

func TestRequirePair(t *testing.T) {
	assert.ErrorIs(t, (&Config{Source: "Greece"}).RequirePair(), ErrPairRequired)
	assert.ErrorContains(t, (&Config{Source: "Greece", Target: "Greece"}).RequirePair(), "must differ")
	assert.NoError(t, (&Config{Source: "Greece", Target: "Italy"}).RequirePair())
}

func TestRequireWindow(t *testing.T) {
	assert.ErrorContains(t, (&Config{MaxLag: 10, WindowSize: 10}).RequireWindow(), "must be smaller than window-size")
	assert.NoError(t, (&Config{MaxLag: 9, WindowSize: 10}).RequireWindow())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Countries: []string{"Greece", "Italy"}, MaxLag: 7}
	clone := cfg.Clone()
	clone.Countries[0] = "Spain"
	clone.MaxLag = 3

	assert.Equal(t, "Greece", cfg.Countries[0])
	assert.Equal(t, 7, cfg.MaxLag)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/lagscan", false},
		{schema.MySQLBackend, "user:pass@localhost/lagscan", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=lagscan", false},
		{schema.PostgreSQLBackend, "dbname=lagscan", true},
		{schema.PostgreSQLBackend, "host=localhost", true},
		{"oracle", "x", true},
	}
	for _, tt := range tests {
		err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
		if tt.wantErr {
			assert.Error(t, err, "%s %q", tt.backend, tt.conn)
		} else {
			assert.NoError(t, err, "%s %q", tt.backend, tt.conn)
		}
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run1"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run1", profile.Prefix)
}
