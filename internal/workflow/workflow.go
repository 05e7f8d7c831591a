// Package workflow wires the dielectric-constant pipeline end to end:
// template parsing, sweep generation, job dispatch, result collection,
// regression and reporting. Control flow is strictly sequential; only the
// dispatcher parallelizes internally.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dielsweep/internal/collect"
	"dielsweep/internal/cp2k"
	"dielsweep/internal/ctxlog"
	"dielsweep/internal/dispatch"
	"dielsweep/internal/fit"
	"dielsweep/internal/fsutil"
	"dielsweep/internal/sweep"
)

// Sweep artifacts persisted to the invocation's working directory.
const (
	DipoleArrayFile    = "dipole_moment_array.dat"
	IntensityArrayFile = "intensity_array.dat"
	VolumeArrayFile    = "volume_array.dat"
)

// Params is the full description of one dielectric-constant run.
type Params struct {
	TemplatePath      string
	Intensities       []float64
	DisplacementField bool
	Polarisation      [3]float64
	DFilter           [3]float64
	EpsType           string
	OutputDir         string
	Machine           dispatch.Machine
	Resources         dispatch.Resources
	Command           string
	ExtraForwardFiles []string
	ExtraCommonFiles  []string
	RestartWFN        string
	DryRun            bool

	// Out receives the final report line. Defaults to os.Stdout.
	Out io.Writer
}

// Run executes the whole sweep. The Nth intensity corresponds to the Nth
// working directory, task and result throughout; any failure aborts the run.
func Run(ctx context.Context, p Params) error {
	logger := ctxlog.FromContext(ctx)
	out := p.Out
	if out == nil {
		out = os.Stdout
	}

	if len(p.Intensities) < 2 {
		return errors.New("workflow: at least two intensity values are required")
	}

	template, err := cp2k.ParseFile(p.TemplatePath)
	if err != nil {
		return err
	}
	logger.Info("Template parsed.", "path", p.TemplatePath)

	workPaths, err := sweep.Generate(ctx, sweep.Series{
		Template:          template,
		Intensities:       p.Intensities,
		DisplacementField: p.DisplacementField,
		Polarisation:      p.Polarisation,
		DFilter:           p.DFilter,
		EpsType:           p.EpsType,
		RestartWFN:        p.RestartWFN,
		ExtraForwardFiles: p.ExtraForwardFiles,
	}, p.OutputDir)
	if err != nil {
		return err
	}
	logger.Info("Sweep inputs generated.", "points", len(workPaths))

	tasks := sweep.BuildTasks(p.Command, workPaths, p.ExtraForwardFiles)

	// The common file list is assembled fresh on every run. The restart
	// wavefunction is staged at the work base so that every generated input
	// can reference it one directory level up.
	commonPaths := append([]string(nil), p.ExtraCommonFiles...)
	if p.RestartWFN != "" {
		commonPaths = append(commonPaths, p.RestartWFN)
	}
	if err := fsutil.CopyFileList(commonPaths, p.OutputDir); err != nil {
		return fmt.Errorf("workflow: stage common files: %w", err)
	}
	commonNames := make([]string, 0, len(commonPaths))
	for _, path := range commonPaths {
		commonNames = append(commonNames, filepath.Base(path))
	}

	submission, err := dispatch.NewSubmission(p.OutputDir, p.Machine, p.Resources, tasks, commonNames)
	if err != nil {
		return err
	}
	if err := submission.Run(ctx, p.DryRun); err != nil {
		return err
	}
	if p.DryRun {
		logger.Info("Dry run complete, no results to collect.")
		return nil
	}

	axis, err := cp2k.FieldAxis(p.Polarisation)
	if err != nil {
		return err
	}
	dipoles, err := collect.DipoleMoments(p.OutputDir, workPaths, axis)
	if err != nil {
		return err
	}
	volumes, err := collect.Volumes(p.OutputDir, workPaths)
	if err != nil {
		return err
	}

	polarization, err := fit.Polarization(dipoles, volumes)
	if err != nil {
		return err
	}
	result, err := fit.Dielectric(p.Intensities, polarization)
	if err != nil {
		return err
	}

	if err := fit.SaveArray(DipoleArrayFile, dipoles); err != nil {
		return err
	}
	if err := fit.SaveArray(IntensityArrayFile, p.Intensities); err != nil {
		return err
	}
	if err := fit.SaveArray(VolumeArrayFile, volumes); err != nil {
		return err
	}

	fmt.Fprintf(out, "The dielectric constant is %10.6f\n", result.Dielectric)
	logger.Info("Dielectric constant workflow complete.",
		"dielectric", result.Dielectric, "slope", result.Slope, "intercept", result.Intercept)
	return nil
}
