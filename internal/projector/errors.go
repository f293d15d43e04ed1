package projector

import "fmt"

// MappingError reports a backend payload whose shape cannot be projected.
// Raw holds the offending value.
type MappingError struct {
	Raw    any
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("unexpected payload shape: %s", e.Reason)
}

// ValidationError reports a filter value outside its vocabulary.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s filter %q", e.Field, e.Value)
}
