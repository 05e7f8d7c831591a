package fit

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intensity_array.dat")
	values := []float64{0, 0.001, 2e-4}
	require.NoError(t, SaveArray(path, values))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, len(values))
	for i, line := range lines {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		require.NoError(t, err)
		assert.Equal(t, values[i], v)
	}
}

func TestSaveArrayEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dat")
	require.NoError(t, SaveArray(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
