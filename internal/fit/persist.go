package fit

import (
	"fmt"
	"os"
	"strings"
)

// SaveArray persists a numeric array as one value per line in scientific
// notation, the flat format downstream plotting scripts expect.
func SaveArray(path string, values []float64) error {
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "%.18e\n", v)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("fit: save array: %w", err)
	}
	return nil
}
