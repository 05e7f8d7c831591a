package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dielsweep/internal/cp2k"
	"dielsweep/internal/ctxlog"
	"dielsweep/internal/fsutil"
)

// Fixed per-task file names shared between generation and collection.
const (
	InputFileName   = "input.inp"
	MomentsFileName = "moments.dat"
	LogFileName     = "cp2k.log"
)

// Response modes of the dielectric constant.
const (
	EpsTypeOptical = "optical" // single-point energy/force evaluation
	EpsTypeStatic  = "static"  // geometry optimization
)

// Series describes one intensity sweep over a shared input template.
type Series struct {
	Template          *cp2k.Input
	Intensities       []float64
	DisplacementField bool
	Polarisation      [3]float64
	DFilter           [3]float64
	EpsType           string
	RestartWFN        string   // optional
	ExtraForwardFiles []string // copied into every working directory
}

// DirName is the working directory name of one sweep point: the intensity
// with fixed six-decimal formatting, e.g. "efield_0.001000".
func DirName(intensity float64) string {
	return fmt.Sprintf("efield_%.6f", intensity)
}

// runType maps the response mode to the CP2K run type.
func (s Series) runType() (string, error) {
	switch s.EpsType {
	case EpsTypeOptical:
		return cp2k.RunTypeEnergyForce, nil
	case EpsTypeStatic:
		return cp2k.RunTypeGeoOpt, nil
	default:
		return "", fmt.Errorf("sweep: unknown eps type %q", s.EpsType)
	}
}

// Generate writes one input file per intensity into its own directory under
// outputDir and returns the ordered relative directory names. Each point's
// input is derived from the template by a pure clone-and-apply step; the
// template is never mutated. The FORCE_EVAL precondition is checked before
// any directory is created.
func Generate(ctx context.Context, s Series, outputDir string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	if s.Template == nil {
		return nil, errors.New("sweep: template must not be nil")
	}
	if len(s.Intensities) == 0 {
		return nil, errors.New("sweep: at least one intensity value is required")
	}
	runType, err := s.runType()
	if err != nil {
		return nil, err
	}
	if n := s.Template.SectionCount("FORCE_EVAL"); n != 1 {
		return nil, fmt.Errorf("%w, found %d", cp2k.ErrForceEvalCount, n)
	}

	workPaths := make([]string, 0, len(s.Intensities))
	for _, intensity := range s.Intensities {
		point, err := cp2k.BuildPointInput(s.Template, cp2k.PointSpec{
			Efield: cp2k.Efield{
				Intensity:         intensity,
				DisplacementField: s.DisplacementField,
				Polarisation:      s.Polarisation,
				DFilter:           s.DFilter,
			},
			MomentsFile:     MomentsFileName,
			PeriodicMoments: true,
			RunType:         runType,
			RestartWFN:      s.RestartWFN,
		})
		if err != nil {
			return nil, err
		}

		dirName := DirName(intensity)
		dir := filepath.Join(outputDir, dirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sweep: create working directory: %w", err)
		}

		inputPath := filepath.Join(dir, InputFileName)
		if err := point.WriteFile(inputPath); err != nil {
			return nil, fmt.Errorf("sweep: write input file: %w", err)
		}
		if err := fsutil.CopyFileList(s.ExtraForwardFiles, dir); err != nil {
			return nil, fmt.Errorf("sweep: copy extra files: %w", err)
		}

		logger.Info("Input file written.", "intensity", intensity, "path", inputPath)
		workPaths = append(workPaths, dirName)
	}
	return workPaths, nil
}
