package ik

import "fmt"

// ConfigError reports an invalid solver configuration: a malformed mimic
// table (self-reference, chained mimic, out-of-range master) or invalid
// weights. It is raised at construction and fatal to that instance.
type ConfigError struct {
	Joint  int // configuration index, -1 when not joint-specific
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Joint < 0 {
		return fmt.Sprintf("ik: invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("ik: invalid configuration at joint %d: %s", e.Joint, e.Reason)
}

// DimensionError reports a per-call shape mismatch between the Jacobian,
// the twist, or the configured joint count. The caller can fix the inputs
// and retry.
type DimensionError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("ik: %s: want %d, got %d", e.What, e.Want, e.Got)
}

// NumericalError reports that the SVD factorization failed to converge.
// It is surfaced to the caller so a degraded solve is never mistaken for
// a valid one; truncating small singular values is policy, not an error.
type NumericalError struct {
	Reason string
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("ik: %s", e.Reason)
}
