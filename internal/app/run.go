package app

import (
	"context"
	"fmt"

	"dielsweep/internal/ctxlog"
	"dielsweep/internal/workflow"
)

// Run executes the sweep described by the loaded configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	m := a.model
	params := workflow.Params{
		TemplatePath:      m.Sweep.Template,
		Intensities:       m.Sweep.Intensities,
		DisplacementField: m.Sweep.DisplacementField,
		Polarisation:      m.Sweep.Polarisation,
		DFilter:           m.Sweep.DFilter,
		EpsType:           m.Sweep.EpsType,
		OutputDir:         m.Sweep.OutputDir,
		Machine:           m.Machine,
		Resources:         m.Resources,
		Command:           m.Command,
		ExtraForwardFiles: m.Sweep.ExtraFiles,
		ExtraCommonFiles:  m.Sweep.CommonFiles,
		RestartWFN:        m.Sweep.RestartWFN,
		DryRun:            appConfig.DryRun,
		Out:               a.outW,
	}

	if err := workflow.Run(ctx, params); err != nil {
		return fmt.Errorf("workflow failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
