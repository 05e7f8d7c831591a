package cp2k

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

const floatPattern = `(-?[0-9]*\.?[0-9]+(?:[Ee][+-]?[0-9]+)?)`

// dipoleLine matches the component line of a moments frame, e.g.
// "X=   0.00000000 Y=   0.00000000 Z=   0.00020000     Total= ...".
var dipoleLine = regexp.MustCompile(
	`(?i)X\s*=\s*` + floatPattern + `\s+Y\s*=\s*` + floatPattern + `\s+Z\s*=\s*` + floatPattern)

// FirstDipole extracts the dipole vector of the first frame recorded in a
// moments file produced by &PRINT &MOMENTS.
func FirstDipole(r io.Reader) ([3]float64, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m := dipoleLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		var d [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return [3]float64{}, fmt.Errorf("cp2k: malformed dipole value %q: %w", m[i+1], err)
			}
			d[i] = v
		}
		return d, nil
	}
	if err := sc.Err(); err != nil {
		return [3]float64{}, fmt.Errorf("cp2k: read moments output: %w", err)
	}
	return [3]float64{}, errors.New("cp2k: no dipole frame found in moments output")
}

// FirstDipoleFile reads the first dipole frame from the file at path.
func FirstDipoleFile(path string) ([3]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return [3]float64{}, fmt.Errorf("cp2k: open moments file: %w", err)
	}
	defer f.Close()

	d, err := FirstDipole(f)
	if err != nil {
		return [3]float64{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
