package acquire

type state uint8

const (
	stateNotFound state = iota
	stateFound
	stateFailed
)

// Result is the outcome of one fetch attempt: a value was found, the page had
// no acceptable value, or the page could not be fetched.
type Result[T any] struct {
	state state
	value T
	err   error
}

// Found reports an accepted value.
func Found[T any](v T) Result[T] { return Result[T]{state: stateFound, value: v} }

// NotFound reports a page that yielded no acceptable value.
func NotFound[T any]() Result[T] { return Result[T]{state: stateNotFound} }

// Failed reports a page that could not be fetched.
func Failed[T any](err error) Result[T] { return Result[T]{state: stateFailed, err: err} }

// Value returns the found value. ok is false for NotFound and Failed.
func (r Result[T]) Value() (v T, ok bool) { return r.value, r.state == stateFound }

func (r Result[T]) IsFound() bool    { return r.state == stateFound }
func (r Result[T]) IsNotFound() bool { return r.state == stateNotFound }

// Err returns the failure of a Failed result, or nil.
func (r Result[T]) Err() error { return r.err }

func (r Result[T]) String() string {
	switch r.state {
	case stateFound:
		return "found"
	case stateFailed:
		return "failed"
	default:
		return "not found"
	}
}
