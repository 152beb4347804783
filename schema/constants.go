package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// Strength buckets a correlation coefficient for display.
	Strength string

	// StopReason explains why a scan sequence ended.
	StopReason string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Correlation strength labels.
const (
	StrongStrength   Strength = "Strong"
	ModerateStrength Strength = "Moderate"
	WeakStrength     Strength = "Weak"
	NoneStrength     Strength = "None"
)

// Reasons a scan stops before its last start row.
const (
	StopCompleted    StopReason = "completed"
	StopInsufficient StopReason = "insufficient-data"
)

// Defaults shared by the CLI, the MCP server and tests.
const (
	DefaultMaxLag     = 20
	DefaultWindowSize = 30
	DefaultNeighbors  = 5
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetStrength buckets a correlation coefficient. Negative correlations are
// never a useful travel-time signal, so they count as None.
func GetStrength(correlation float64) Strength {
	switch {
	case correlation >= 0.7:
		return StrongStrength
	case correlation >= 0.4:
		return ModerateStrength
	case correlation > 0:
		return WeakStrength
	default:
		return NoneStrength
	}
}
