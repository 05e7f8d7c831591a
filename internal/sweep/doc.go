// Package sweep materializes one CP2K calculation per field-intensity value
// and wraps the resulting working directories into dispatchable tasks. The
// Nth intensity always maps to the Nth directory and the Nth task.
package sweep
