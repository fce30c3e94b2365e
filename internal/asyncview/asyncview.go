// Package asyncview provides the load lifecycle every view shares:
// NONE → LOADING → SUCCESS(value) | ERROR(err), with Unload returning to
// NONE from any state. Models are immutable values; transitions return a new
// model. There is no direct SUCCESS↔ERROR transition; a view re-enters
// LOADING first. Re-entering LOADING while already loading is a refresh.
package asyncview

// State is the lifecycle tag of a Model.
type State int

const (
	None State = iota
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case None:
		return "NONE"
	case Loading:
		return "LOADING"
	case Success:
		return "SUCCESS"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Model holds a value of type T behind the load lifecycle. The zero value
// is a model in the NONE state.
type Model[T any] struct {
	state State
	value T
	err   error
}

// New returns a model in the NONE state.
func New[T any]() Model[T] {
	return Model[T]{}
}

// State returns the lifecycle tag.
func (m Model[T]) State() State {
	return m.state
}

// Load transitions to LOADING, dropping any previous value or error.
func (m Model[T]) Load() Model[T] {
	return Model[T]{state: Loading}
}

// Succeed transitions to SUCCESS carrying value.
func (m Model[T]) Succeed(value T) Model[T] {
	return Model[T]{state: Success, value: value}
}

// Fail transitions to ERROR carrying err.
func (m Model[T]) Fail(err error) Model[T] {
	return Model[T]{state: Error, err: err}
}

// Unload transitions to NONE from any state.
func (m Model[T]) Unload() Model[T] {
	return Model[T]{}
}

// Value returns the success payload; ok is false unless the model is in the
// SUCCESS state. Consumers must not touch the payload without checking ok.
func (m Model[T]) Value() (value T, ok bool) {
	if m.state != Success {
		var zero T
		return zero, false
	}
	return m.value, true
}

// Err returns the captured error, or nil unless the model is in ERROR.
func (m Model[T]) Err() error {
	if m.state != Error {
		return nil
	}
	return m.err
}
