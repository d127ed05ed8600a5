package circuit

import "fmt"

// ConfigurationError reports an invalid construction parameter, such as a
// weight or threshold outside [0, 1]. Objects that fail construction are
// unusable; the caller must reconstruct with valid parameters.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %.3f: %s", e.Field, e.Value, e.Reason)
}

// StateError reports an operation attempted from the wrong lifecycle state,
// such as receiving a signal on an inactive node. It is always returned to
// the caller, never swallowed.
type StateError struct {
	NodeID string
	State  State
	Op     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("node %s: cannot %s while %s", e.NodeID, e.Op, e.State)
}

// ProcessingError wraps a failure inside a node's processing hook. It never
// escapes Process; it is captured into the returned Output and counted
// against the node's error budget.
type ProcessingError struct {
	NodeID string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("node %s: processing failed: %v", e.NodeID, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
