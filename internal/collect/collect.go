// Package collect reads the per-task scalar results of a finished sweep, in
// sweep order: one dipole-moment component and one cell volume per working
// directory.
package collect

import (
	"fmt"
	"path/filepath"

	"dielsweep/internal/cp2k"
	"dielsweep/internal/sweep"
)

// DipoleMoments returns, per working directory, the dipole component on the
// given cartesian axis from the first frame of the moments file. A missing
// or malformed file is a hard failure.
func DipoleMoments(workBase string, workPaths []string, axis int) ([]float64, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("collect: invalid cartesian axis %d", axis)
	}
	dipoles := make([]float64, 0, len(workPaths))
	for _, workPath := range workPaths {
		d, err := cp2k.FirstDipoleFile(filepath.Join(workBase, workPath, sweep.MomentsFileName))
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		dipoles = append(dipoles, d[axis])
	}
	return dipoles, nil
}

// Volumes returns, per working directory, the cell volume in atomic units
// computed from the first cell frame of the execution log. The first frame
// is used even for GEO_OPT runs, where the cell could in principle relax.
func Volumes(workBase string, workPaths []string) ([]float64, error) {
	volumes := make([]float64, 0, len(workPaths))
	for _, workPath := range workPaths {
		cell, err := cp2k.FirstCellFile(filepath.Join(workBase, workPath, sweep.LogFileName))
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		volumes = append(volumes, cp2k.CellVolumeAU(cell))
	}
	return volumes, nil
}
