package cp2k

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
)

// ErrForceEvalCount is returned when the template does not contain exactly
// one FORCE_EVAL section.
var ErrForceEvalCount = errors.New("cp2k: exactly one FORCE_EVAL section is required")

// Run types written to &GLOBAL RUN_TYPE.
const (
	RunTypeEnergyForce = "ENERGY_FORCE"
	RunTypeGeoOpt      = "GEO_OPT"
)

// Efield describes the &PERIODIC_EFIELD block applied to a sweep point.
type Efield struct {
	Intensity         float64
	DisplacementField bool
	Polarisation      [3]float64
	DFilter           [3]float64
}

// PointSpec collects every template mutation applied for one sweep point.
// The zero value is not valid; populate all required fields and rely on
// BuildPointInput to validate.
type PointSpec struct {
	Efield          Efield
	MomentsFile     string // dipole output file, written as FILENAME =<name>
	PeriodicMoments bool
	RunType         string
	RestartWFN      string // optional restart wavefunction path
}

// Validate checks the spec before any template is touched.
func (p PointSpec) Validate() error {
	if p.MomentsFile == "" {
		return errors.New("cp2k: moments file name must be set")
	}
	switch p.RunType {
	case RunTypeEnergyForce, RunTypeGeoOpt:
	default:
		return fmt.Errorf("cp2k: unsupported run type %q", p.RunType)
	}
	if _, err := FieldAxis(p.Efield.Polarisation); err != nil {
		return err
	}
	return nil
}

// BuildPointInput derives the input for one sweep point from the template.
// The template is cloned, never mutated, so callers may reuse it across
// sweep points and invocations.
func BuildPointInput(tpl *Input, spec PointSpec) (*Input, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if n := tpl.SectionCount("FORCE_EVAL"); n != 1 {
		return nil, fmt.Errorf("%w, found %d", ErrForceEvalCount, n)
	}

	in := tpl.Clone()
	in.EnsureSection("GLOBAL").SetKeyword("RUN_TYPE", spec.RunType)

	dft := in.Section("FORCE_EVAL").EnsureSub("DFT")

	moments := dft.EnsureSub("PRINT").EnsureSub("MOMENTS")
	moments.SetKeyword("PERIODIC", formatBool(spec.PeriodicMoments))
	moments.SetKeyword("FILENAME", "="+spec.MomentsFile)

	if spec.RestartWFN != "" {
		// The restart file is staged exactly one directory level above the
		// generated input.
		dft.SetKeyword("WFN_RESTART_FILE_NAME", "../"+filepath.Base(spec.RestartWFN))
	}

	efield := dft.EnsureSub("PERIODIC_EFIELD")
	efield.SetKeyword("INTENSITY", formatFloat(spec.Efield.Intensity))
	efield.SetKeyword("DISPLACEMENT_FIELD", formatBool(spec.Efield.DisplacementField))
	efield.SetKeyword("POLARISATION", formatVec(spec.Efield.Polarisation)...)
	efield.SetKeyword("D_FILTER", formatVec(spec.Efield.DFilter)...)

	return in, nil
}

// FieldAxis returns the cartesian axis index (0, 1 or 2) of the dominant
// component of the polarisation vector. A zero vector is an error.
func FieldAxis(polarisation [3]float64) (int, error) {
	axis, best := 0, 0.0
	for i, v := range polarisation {
		if math.Abs(v) > best {
			best = math.Abs(v)
			axis = i
		}
	}
	if best == 0 {
		return 0, errors.New("cp2k: polarisation vector is zero")
	}
	return axis, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'G', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return ".TRUE."
	}
	return ".FALSE."
}

func formatVec(v [3]float64) []string {
	return []string{formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2])}
}
