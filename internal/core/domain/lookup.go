package domain

// LookupStatus tags the outcome of a single-record fetch.
type LookupStatus int

const (
	LookupFound LookupStatus = iota + 1
	LookupNotFound
	LookupTransientError
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupTransientError:
		return "transient_error"
	default:
		return "unknown"
	}
}

// Lookup is the result of fetching at most one record. A missing row is a
// successful NotFound outcome, not an error.
type Lookup[T any] struct {
	Status LookupStatus
	Value  T
	Err    error
}

// Found wraps a fetched record.
func Found[T any](v T) Lookup[T] {
	return Lookup[T]{Status: LookupFound, Value: v}
}

// NotFound reports that no row matched.
func NotFound[T any]() Lookup[T] {
	return Lookup[T]{Status: LookupNotFound}
}

// TransientError reports a fetch failure.
func TransientError[T any](err error) Lookup[T] {
	return Lookup[T]{Status: LookupTransientError, Err: err}
}

// OK reports whether a record was found.
func (l Lookup[T]) OK() bool {
	return l.Status == LookupFound
}
