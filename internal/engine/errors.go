package engine

import "fmt"

// RangeError reports a malformed range supplied to a ranged operation.
// Ranges are never silently swapped or clamped.
type RangeError struct {
	Min, Max float64
	Reason   string
}

func (e *RangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid range [%v, %v]: %s", e.Min, e.Max, e.Reason)
	}
	return fmt.Sprintf("invalid range: min %v exceeds max %v", e.Min, e.Max)
}

// InvalidParameterError reports a structurally invalid generator
// configuration, such as a pump burst count outside [1, size].
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// ConfigurationError reports unrecoverable missing-seed state. With lazy
// client seed generation this should be unreachable in practice.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "seed configuration: " + e.Reason
}
