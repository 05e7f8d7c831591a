// Package config loads and validates the HCL workflow description consumed
// by the dielectric sweep.
package config
