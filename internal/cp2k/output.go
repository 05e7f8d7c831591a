package cp2k

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const cellMarker = "CELL| Vector"

// FirstCell reads the first simulation cell reported in a CP2K log. The
// "CELL| Vector {a,b,c} [angstrom]:" lines of the first frame become the
// rows of the returned 3x3 matrix. Later frames, e.g. from a relaxing cell
// during GEO_OPT, are ignored.
func FirstCell(r io.Reader) (*mat.Dense, error) {
	rows := make(map[string][]float64, 3)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		idx := strings.Index(line, cellMarker)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(cellMarker):]
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		axis := strings.ToLower(fields[0])
		if axis != "a" && axis != "b" && axis != "c" {
			continue
		}
		if _, done := rows[axis]; done {
			continue
		}

		colon := strings.Index(rest, ":")
		if colon < 0 {
			return nil, fmt.Errorf("cp2k: malformed cell vector line: %s", strings.TrimSpace(line))
		}
		nums := strings.Fields(rest[colon+1:])
		if len(nums) < 3 {
			return nil, fmt.Errorf("cp2k: malformed cell vector line: %s", strings.TrimSpace(line))
		}
		vec := make([]float64, 3)
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(nums[i], 64)
			if err != nil {
				return nil, fmt.Errorf("cp2k: malformed cell component %q: %w", nums[i], err)
			}
			vec[i] = v
		}
		rows[axis] = vec
		if len(rows) == 3 {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cp2k: read log output: %w", err)
	}
	if len(rows) != 3 {
		return nil, errors.New("cp2k: no complete cell found in log output")
	}

	cell := mat.NewDense(3, 3, nil)
	for i, axis := range []string{"a", "b", "c"} {
		cell.SetRow(i, rows[axis])
	}
	return cell, nil
}

// FirstCellFile reads the first cell from the log file at path.
func FirstCellFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cp2k: open log file: %w", err)
	}
	defer f.Close()

	cell, err := FirstCell(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cell, nil
}

// CellVolumeAU converts a cell of angstrom vectors to its volume in atomic
// units via the determinant.
func CellVolumeAU(cell *mat.Dense) float64 {
	return mat.Det(cell) / (AngstromPerBohr * AngstromPerBohr * AngstromPerBohr)
}
