package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
)

// Table names for analysis tracking.
const (
	runsTable       = "lagscan_runs"
	lagResultsTable = "lagscan_lag_results"
)

// analysisTables lists the tracking tables, children last.
var analysisTables = []string{runsTable, lagResultsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{lagResultsTable, getCreateLagResultsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for lagscan_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				command VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_pairs INT NOT NULL DEFAULT 0,
				total_results INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid UUID NOT NULL,
				command TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_pairs INT NOT NULL DEFAULT 0,
				total_results INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				command TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_pairs INTEGER NOT NULL DEFAULT 0,
				total_results INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateLagResultsQuery returns the CREATE TABLE query for lagscan_lag_results.
// window_date is an ISO day string on every backend.
func getCreateLagResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(lagResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				source VARCHAR(128) NOT NULL,
				target VARCHAR(128) NOT NULL,
				start_row INT NOT NULL,
				window_end INT NOT NULL,
				window_date VARCHAR(10),
				best_lag INT NOT NULL,
				correlation DOUBLE NOT NULL,
				skipped BOOLEAN NOT NULL,
				reason TEXT,
				PRIMARY KEY (run_id, source, target, start_row)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				source TEXT NOT NULL,
				target TEXT NOT NULL,
				start_row INT NOT NULL,
				window_end INT NOT NULL,
				window_date TEXT,
				best_lag INT NOT NULL,
				correlation DOUBLE PRECISION NOT NULL,
				skipped BOOLEAN NOT NULL,
				reason TEXT,
				PRIMARY KEY (run_id, source, target, start_row)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				source TEXT NOT NULL,
				target TEXT NOT NULL,
				start_row INTEGER NOT NULL,
				window_end INTEGER NOT NULL,
				window_date TEXT,
				best_lag INTEGER NOT NULL,
				correlation REAL NOT NULL,
				skipped INTEGER NOT NULL,
				reason TEXT,
				PRIMARY KEY (run_id, source, target, start_row)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, as.backend)
	args := []any{uuid.NewString(), command, formatTime(startTime, as.backend), string(configJSON)}

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, command, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, command, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (as *AnalysisStoreImpl) EndRun(runID int64, endTime time.Time, totalPairs, totalResults int) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, as.backend)
	row := as.db.QueryRow(rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), as.backend), runID)
	startTime, err := as.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_pairs = ?, total_results = ? WHERE run_id = ?`, quotedTableName), as.backend)
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalPairs, totalResults, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordScanResult stores every window of a scan in one transaction.
func (as *AnalysisStoreImpl) RecordScanResult(runID int64, result schema.ScanResult) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, source, target, start_row, window_end, window_date, best_lag, correlation, skipped, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(lagResultsTable, as.backend)), as.backend)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare lag result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, lr := range result.Results {
		var windowDate *string
		if !lr.Date.IsZero() {
			d := lr.Date.Format(time.DateOnly)
			windowDate = &d
		}
		if _, err := stmt.Exec(runID, result.Source, result.Target, lr.StartRow, lr.WindowEnd, windowDate, lr.Lag, lr.Correlation, false, nil); err != nil {
			return fmt.Errorf("failed to insert lag result at row %d: %w", lr.StartRow, err)
		}
	}
	for _, sk := range result.Skipped {
		windowEnd := sk.StartRow + result.Params.WindowSize - 1
		if _, err := stmt.Exec(runID, result.Source, result.Target, sk.StartRow, windowEnd, nil, -1, 0.0, true, sk.Reason); err != nil {
			return fmt.Errorf("failed to insert skipped row %d: %w", sk.StartRow, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lag results: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:        string(as.backend),
		Connected:      as.db != nil,
		TableRowCounts: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := as.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		var lastRunTime any
		if err := row.Scan(&status.LastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		t, err := as.parseTime(lastRunTime)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = t

		oldest, err := as.scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	results := quoteTableName(lagResultsTable, as.backend)
	countQuery := rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE skipped = ?", results), as.backend)
	if err := as.db.QueryRow(countQuery, false).Scan(&status.TotalLagResults); err != nil {
		return status, fmt.Errorf("failed to count lag results: %w", err)
	}
	if err := as.db.QueryRow(countQuery, true).Scan(&status.TotalSkippedRows); err != nil {
		return status, fmt.Errorf("failed to count skipped rows: %w", err)
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableRowCounts[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (as *AnalysisStoreImpl) GetAllRuns() ([]schema.ScanRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, command, start_time, end_time, run_duration_ms, total_pairs, total_results, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScanRunRecord
	for rows.Next() {
		var record schema.ScanRunRecord
		var startTime, endTime any
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Command, &startTime, &endTime,
			&record.RunDurationMs, &record.TotalPairs, &record.TotalResults, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if record.StartTime, err = as.parseTime(startTime); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endTime != nil {
			t, err := as.parseTime(endTime)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllLagResults retrieves all lag results from the store.
func (as *AnalysisStoreImpl) GetAllLagResults() ([]schema.LagResultRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, source, target, start_row, window_end, window_date, best_lag, correlation, skipped, reason
		FROM %s ORDER BY run_id, source, target, start_row`, quoteTableName(lagResultsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lag results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.LagResultRecord
	for rows.Next() {
		var record schema.LagResultRecord
		var windowDate *string
		if err := rows.Scan(&record.RunID, &record.Source, &record.Target, &record.StartRow, &record.WindowEnd,
			&windowDate, &record.Lag, &record.Correlation, &record.Skipped, &record.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan lag result: %w", err)
		}
		if windowDate != nil {
			d, err := time.Parse(time.DateOnly, *windowDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse window_date: %w", err)
			}
			record.WindowDate = &d
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lag results: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var v any
	if err := row.Scan(&v); err != nil {
		return time.Time{}, err
	}
	return as.parseTime(v)
}

// parseTime converts a scanned timestamp. SQLite stores RFC3339 text; the
// other backends return native times, or bytes for MySQL without parseTime.
func (as *AnalysisStoreImpl) parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value of type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05.999999", s)
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}
