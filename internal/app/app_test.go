package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dielsweep/internal/dispatch"
)

const appTestConfig = `
command = "cp2k.ssmp -i input.inp"

sweep {
  template     = "template.inp"
  output_dir   = "diel_run"
  eps_type     = "optical"
  intensities  = [0.0, 0.001]
  polarisation = [0, 0, 1]
  d_filter     = [0, 0, 1]
}
`

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{ConfigPath: "workflow.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "workflow.hcl", cfg.ConfigPath)

	_, err = NewConfig(Config{})
	assert.Error(t, err)
}

func TestNewAppLoadsModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.hcl")
	require.NoError(t, os.WriteFile(path, []byte(appTestConfig), 0o644))

	var out bytes.Buffer
	a := NewApp(&out, &Config{ConfigPath: path, LogFormat: "text", LogLevel: "info"})

	model := a.Model()
	require.NotNil(t, model)
	assert.Equal(t, "cp2k.ssmp -i input.inp", model.Command)
	assert.Equal(t, dispatch.KindLocal, model.Machine.Kind)
	assert.Equal(t, []float64{0, 0.001}, model.Sweep.Intensities)
}

func TestNewAppPanicsOnBadConfig(t *testing.T) {
	var out bytes.Buffer
	assert.Panics(t, func() {
		NewApp(&out, &Config{ConfigPath: filepath.Join(t.TempDir(), "missing.hcl"), LogFormat: "text", LogLevel: "info"})
	})
}

func TestNewLoggerLevels(t *testing.T) {
	var out bytes.Buffer
	logger := newLogger("debug", "json", &out)
	logger.Debug("visible at debug level")
	assert.Contains(t, out.String(), "visible at debug level")

	out.Reset()
	logger = newLogger("warn", "text", &out)
	logger.Info("hidden below warn level")
	assert.Empty(t, out.String())
}
