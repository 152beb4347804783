//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestLagscanWithMySQL tests the lagscan CLI with a MySQL backend.
func TestLagscanWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "lagscan",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/lagscan?parseTime=true", host, port.Port())

	t.Setenv("LAGSCAN_CACHE_BACKEND", "mysql")
	t.Setenv("LAGSCAN_CACHE_DB_CONNECT", connStr)
	t.Setenv("LAGSCAN_ANALYSIS_BACKEND", "mysql")
	t.Setenv("LAGSCAN_ANALYSIS_DB_CONNECT", connStr)

	exerciseBackend(t)
}

// TestLagscanWithPostgres tests the lagscan CLI with a PostgreSQL backend.
func TestLagscanWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	t.Setenv("LAGSCAN_CACHE_BACKEND", "postgresql")
	t.Setenv("LAGSCAN_CACHE_DB_CONNECT", connStr)
	t.Setenv("LAGSCAN_ANALYSIS_BACKEND", "postgresql")
	t.Setenv("LAGSCAN_ANALYSIS_DB_CONNECT", connStr)

	exerciseBackend(t)
}

// exerciseBackend runs the cache, tracking and migration commands against the
// backend configured through the environment.
func exerciseBackend(t *testing.T) {
	home := t.TempDir()
	dataset := writeArrivals(t, 90)

	// Start from a clean slate
	_, err := runLagscan(t, home, "cache", "clear")
	require.NoError(t, err)
	_, err = runLagscan(t, home, "analysis", "clear")
	require.NoError(t, err)

	// A scan fills the cache and records one run
	_, err = runLagscan(t, home, "scan", dataset, "--source", "Greece", "--target", "Macedonia", "--output", "json")
	require.NoError(t, err)

	// The matrix records every ordered pair under a second run
	_, err = runLagscan(t, home, "matrix", dataset, "--window-size", "21", "--max-lag", "7", "--output", "csv")
	require.NoError(t, err)

	out, err := runLagscan(t, home, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Connected: true")

	out, err = runLagscan(t, home, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Total Runs: 2")

	// Roll the schema back and forward again
	_, err = runLagscan(t, home, "analysis", "clear")
	require.NoError(t, err)
	_, err = runLagscan(t, home, "analysis", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runLagscan(t, home, "analysis", "migrate")
	require.NoError(t, err)
}
