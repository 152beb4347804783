//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	// sharedLagscanPath holds the path to a shared lagscan binary built once for all tests.
	sharedLagscanPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getLagscanBinary returns the path to the lagscan binary, building it once if needed.
func getLagscanBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "lagscan-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		lagscanPath := filepath.Join(tempDir, "lagscan")
		buildCmd := exec.Command("go", "build", "-o", lagscanPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build lagscan: %v\n%s", err, out))
		}

		sharedLagscanPath = lagscanPath
	})

	return sharedLagscanPath
}

// writeArrivals writes a dataset where Macedonia trails Greece by 3 days and
// Serbia trails Macedonia by 2. Every tenth Serbia value is missing.
func writeArrivals(t *testing.T, days int) string {
	t.Helper()
	greece := make([]int, days)
	for i := range greece {
		greece[i] = 200 + (i*53)%97 + (i*29)%31
	}
	at := func(i int) int {
		if i < 0 {
			return 200
		}
		return greece[i]
	}

	var sb strings.Builder
	sb.WriteString("Date,Greece,Macedonia,Serbia\n")
	start := time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := range days {
		serbia := fmt.Sprint(at(i - 5))
		if i%10 == 9 {
			serbia = ""
		}
		fmt.Fprintf(&sb, "%s,%d,%d,%s\n", start.AddDate(0, 0, i).Format(time.DateOnly), at(i), at(i-3), serbia)
	}

	path := filepath.Join(t.TempDir(), "arrivals.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

// runLagscan runs the binary with an isolated HOME so default SQLite files stay in the test dir.
func runLagscan(t *testing.T, home string, args ...string) ([]byte, error) {
	t.Helper()
	cmd := exec.Command(getLagscanBinary(), args...)
	cmd.Env = append(os.Environ(), "HOME="+home)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			t.Logf("Command failed: %s\nStderr: %s", cmd.String(), string(exitErr.Stderr))
		}
		return output, err
	}
	return output, nil
}
