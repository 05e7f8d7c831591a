// Package fit turns the collected sweep arrays into a dielectric constant:
// polarization per point, an ordinary least-squares line through
// polarization vs. intensity, and the Gaussian-convention conversion of the
// slope into the constant.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Result holds the fitted line and the derived dielectric constant.
type Result struct {
	Slope      float64
	Intercept  float64
	Dielectric float64
}

// Polarization divides each dipole moment by its cell volume. A volume of
// zero or below is a hard failure.
func Polarization(dipoles, volumes []float64) ([]float64, error) {
	if len(dipoles) != len(volumes) {
		return nil, fmt.Errorf("fit: %d dipole values vs %d volume values", len(dipoles), len(volumes))
	}
	polarization := make([]float64, len(dipoles))
	for i := range dipoles {
		if volumes[i] <= 0 {
			return nil, fmt.Errorf("fit: non-positive cell volume %g at sweep point %d", volumes[i], i)
		}
		polarization[i] = dipoles[i] / volumes[i]
	}
	return polarization, nil
}

// Dielectric regresses polarization against intensity and converts the
// slope to a dielectric constant: slope * 4 pi + 1 (Gaussian units).
func Dielectric(intensities, polarization []float64) (Result, error) {
	if len(intensities) != len(polarization) {
		return Result{}, fmt.Errorf("fit: %d intensity values vs %d polarization values", len(intensities), len(polarization))
	}
	if len(intensities) < 2 {
		return Result{}, errors.New("fit: at least two sweep points are required for a regression")
	}

	intercept, slope := stat.LinearRegression(intensities, polarization, nil, false)
	return Result{
		Slope:      slope,
		Intercept:  intercept,
		Dielectric: slope*4*math.Pi + 1,
	}, nil
}
