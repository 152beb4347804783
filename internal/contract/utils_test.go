package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "perfect", input: 1.0, expected: "Strong"},
		{name: "exactly strong", input: 0.7, expected: "Strong"},
		{name: "just before strong", input: 0.69, expected: "Moderate"},
		{name: "exactly moderate", input: 0.4, expected: "Moderate"},
		{name: "just before moderate", input: 0.39, expected: "Weak"},
		{name: "zero", input: 0.0, expected: "None"},
		{name: "negative", input: -0.5, expected: "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	for _, c := range []float64{0.9, 0.5, 0.1, -0.2} {
		label := GetColorLabel(c)
		assert.Contains(t, label, GetPlainLabel(c))
		assert.Contains(t, label, "\x1b[", "expected ANSI escape in %q", label)
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.csv")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".lagscan_cache.db"))
	assert.True(t, strings.HasSuffix(GetAnalysisDBFilePath(), ".lagscan_analysis.db"))
	assert.NotEqual(t, GetCacheDBFilePath(), GetAnalysisDBFilePath())
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "Greece", TruncateName("Greece", 10))
	assert.Equal(t, "Maced...", TruncateName("Macedonia (FYROM)", 8))
	assert.Equal(t, "Macedonia", TruncateName("Macedonia", 3), "widths of 3 or less leave names untouched")
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("sometimes")
	assert.Error(t, err)
}

func TestParseCountries(t *testing.T) {
	assert.Equal(t, []string{"Greece", "Italy", "Spain"}, ParseCountries(" Greece,Italy, ,Spain,Italy"))
	assert.Nil(t, ParseCountries(""))
}
