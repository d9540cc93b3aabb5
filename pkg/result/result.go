// Package result provides a two-variant outcome type for fallible operations.
//
// Every fallible step in the enrichment core returns a [Result] instead of a
// bare (value, error) pair so that validation phases can be chained with
// [Bind] and [Map] and short-circuit on the first failure. No panics cross
// package boundaries; a Result is either Ok with a value or Err with an error.
//
// # Usage
//
//	r := result.Ok(42)
//	doubled := result.Map(r, func(v int) int { return v * 2 })
//	v, err := doubled.Unwrap()
//
// Chaining stops at the first error:
//
//	r := result.Bind(parse(input), validate)
//	if r.IsErr() {
//	    return r.Err()
//	}
package result

// Result holds either a value or an error, never both.
// The zero value is Ok with the zero value of T; use [Ok] and [Err] to
// construct Results explicitly.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err returns a failed Result holding err.
// Passing a nil error yields an Ok Result with the zero value of T.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk reports whether the Result holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// IsErr reports whether the Result holds an error.
func (r Result[T]) IsErr() bool { return r.err != nil }

// Err returns the held error, or nil for an Ok Result.
func (r Result[T]) Err() error { return r.err }

// Value returns the held value. For an Err Result it returns the zero value;
// callers that need to distinguish should use [Result.Unwrap].
func (r Result[T]) Value() T { return r.value }

// Unwrap returns the value and error in Go's conventional pair form, for
// handing results back across the process boundary.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }

// Bind applies f to the value of an Ok Result and returns f's outcome.
// For an Err Result, f is not called and the error propagates unchanged.
func Bind[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return f(r.value)
}

// Map applies f to the value of an Ok Result and wraps the return in Ok.
// For an Err Result, f is not called and the error propagates unchanged.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}
