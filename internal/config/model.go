package config

import (
	"errors"
	"fmt"
	"strings"

	"dielsweep/internal/cp2k"
	"dielsweep/internal/dispatch"
	"dielsweep/internal/sweep"
)

// Sweep is the validated sweep description.
type Sweep struct {
	Template          string
	OutputDir         string
	EpsType           string
	Intensities       []float64
	Polarisation      [3]float64
	DFilter           [3]float64
	DisplacementField bool
	RestartWFN        string
	ExtraFiles        []string
	CommonFiles       []string
}

// Model is the validated workflow configuration.
type Model struct {
	Command   string
	Sweep     Sweep
	Machine   dispatch.Machine
	Resources dispatch.Resources
}

func (m *Model) validate() error {
	if strings.TrimSpace(m.Command) == "" {
		return errors.New("config: command must not be empty")
	}
	switch m.Sweep.EpsType {
	case sweep.EpsTypeOptical, sweep.EpsTypeStatic:
	default:
		return fmt.Errorf("config: eps_type must be %q or %q, got %q",
			sweep.EpsTypeOptical, sweep.EpsTypeStatic, m.Sweep.EpsType)
	}
	if len(m.Sweep.Intensities) < 2 {
		return errors.New("config: at least two intensity values are required")
	}
	if _, err := cp2k.FieldAxis(m.Sweep.Polarisation); err != nil {
		return err
	}
	return m.Machine.Validate()
}
