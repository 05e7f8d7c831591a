package cp2k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zFieldSpec(intensity float64) PointSpec {
	return PointSpec{
		Efield: Efield{
			Intensity:    intensity,
			Polarisation: [3]float64{0, 0, 1},
			DFilter:      [3]float64{0, 0, 1},
		},
		MomentsFile:     "moments.dat",
		PeriodicMoments: true,
		RunType:         RunTypeEnergyForce,
	}
}

func TestBuildPointInput(t *testing.T) {
	tpl, err := ParseString(waterTemplate)
	require.NoError(t, err)

	point, err := BuildPointInput(tpl, zFieldSpec(0.001))
	require.NoError(t, err)

	efield := point.Section("FORCE_EVAL").Sub("DFT").Sub("PERIODIC_EFIELD")
	require.NotNil(t, efield)
	intensity, _ := efield.KeywordValues("INTENSITY")
	assert.Equal(t, []string{"0.001"}, intensity)
	displacement, _ := efield.KeywordValues("DISPLACEMENT_FIELD")
	assert.Equal(t, []string{".FALSE."}, displacement)
	polarisation, _ := efield.KeywordValues("POLARISATION")
	assert.Equal(t, []string{"0", "0", "1"}, polarisation)

	moments := point.Section("FORCE_EVAL").Sub("DFT").Sub("PRINT").Sub("MOMENTS")
	require.NotNil(t, moments)
	filename, _ := moments.KeywordValues("FILENAME")
	assert.Equal(t, []string{"=moments.dat"}, filename)
	periodic, _ := moments.KeywordValues("PERIODIC")
	assert.Equal(t, []string{".TRUE."}, periodic)

	runType, _ := point.Section("GLOBAL").KeywordValues("RUN_TYPE")
	assert.Equal(t, []string{"ENERGY_FORCE"}, runType)

	// The template stays untouched.
	assert.Nil(t, tpl.Section("FORCE_EVAL").Sub("DFT").Sub("PERIODIC_EFIELD"))
}

func TestBuildPointInputStaticRunType(t *testing.T) {
	tpl, err := ParseString(waterTemplate)
	require.NoError(t, err)

	spec := zFieldSpec(0.002)
	spec.RunType = RunTypeGeoOpt
	point, err := BuildPointInput(tpl, spec)
	require.NoError(t, err)

	runType, _ := point.Section("GLOBAL").KeywordValues("RUN_TYPE")
	assert.Equal(t, []string{"GEO_OPT"}, runType)
}

func TestBuildPointInputIdempotent(t *testing.T) {
	tpl, err := ParseString(waterTemplate)
	require.NoError(t, err)

	first, err := BuildPointInput(tpl, zFieldSpec(0.001))
	require.NoError(t, err)
	second, err := BuildPointInput(tpl, zFieldSpec(0.001))
	require.NoError(t, err)

	assert.Equal(t, first.Render(), second.Render())

	// Re-applying to an already mutated input yields the same configuration.
	again, err := BuildPointInput(first, zFieldSpec(0.001))
	require.NoError(t, err)
	assert.Equal(t, first.Render(), again.Render())
}

func TestBuildPointInputRestart(t *testing.T) {
	tpl, err := ParseString(waterTemplate)
	require.NoError(t, err)

	spec := zFieldSpec(0.001)
	spec.RestartWFN = "/scratch/previous/water-RESTART.wfn"
	point, err := BuildPointInput(tpl, spec)
	require.NoError(t, err)

	restart, ok := point.Section("FORCE_EVAL").Sub("DFT").KeywordValues("WFN_RESTART_FILE_NAME")
	require.True(t, ok)
	assert.Equal(t, []string{"../water-RESTART.wfn"}, restart)
}

func TestBuildPointInputForceEvalCount(t *testing.T) {
	two, err := ParseString("&FORCE_EVAL\n&END FORCE_EVAL\n&FORCE_EVAL\n&END FORCE_EVAL\n")
	require.NoError(t, err)
	_, err = BuildPointInput(two, zFieldSpec(0.001))
	assert.ErrorIs(t, err, ErrForceEvalCount)

	none, err := ParseString("&GLOBAL\n&END GLOBAL\n")
	require.NoError(t, err)
	_, err = BuildPointInput(none, zFieldSpec(0.001))
	assert.ErrorIs(t, err, ErrForceEvalCount)
}

func TestPointSpecValidate(t *testing.T) {
	spec := zFieldSpec(0.001)
	spec.RunType = "MD"
	assert.Error(t, spec.Validate())

	spec = zFieldSpec(0.001)
	spec.MomentsFile = ""
	assert.Error(t, spec.Validate())

	spec = zFieldSpec(0.001)
	spec.Efield.Polarisation = [3]float64{}
	assert.Error(t, spec.Validate())
}

func TestFieldAxis(t *testing.T) {
	tests := []struct {
		name         string
		polarisation [3]float64
		want         int
	}{
		{"x", [3]float64{1, 0, 0}, 0},
		{"y negative", [3]float64{0, -2, 0}, 1},
		{"z", [3]float64{0, 0, 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis, err := FieldAxis(tt.polarisation)
			require.NoError(t, err)
			assert.Equal(t, tt.want, axis)
		})
	}

	_, err := FieldAxis([3]float64{})
	assert.Error(t, err)
}
