package veil

// StatusKind classifies the editor's most recent outcome.
type StatusKind int

const (
	// StatusIdle means no image has been loaded yet.
	StatusIdle StatusKind = iota

	// StatusLoading means a decode is in flight.
	StatusLoading

	// StatusReady means surfaces exist and accept strokes.
	StatusReady

	// StatusError means the last operation failed.
	StatusError
)

// String returns the kind name for diagnostics.
func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the single-line state the editor exposes to a UI.
type Status struct {
	Kind    StatusKind
	Message string
}
