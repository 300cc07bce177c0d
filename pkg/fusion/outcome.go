package fusion

import (
	"fmt"
	"log"
)

// SourceFailure records why one evidence source contributed nothing to an
// answer. It is data, not a raised error: the pipeline keeps going.
type SourceFailure struct {
	Source string
	Err    error
}

func (f SourceFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

// Outcome is the soft-fail result of one external capability call: a value,
// or the failure that voided it.
type Outcome[T any] struct {
	value   T
	failure *SourceFailure
}

func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

func Failed[T any](source string, err error) Outcome[T] {
	return Outcome[T]{failure: &SourceFailure{Source: source, Err: err}}
}

// Value returns the result and whether the call succeeded.
func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.failure == nil
}

// Failure returns the recorded failure, if any.
func (o Outcome[T]) Failure() (SourceFailure, bool) {
	if o.failure == nil {
		return SourceFailure{}, false
	}
	return *o.failure, true
}

// OrDefault returns the value on success, fallback otherwise.
func (o Outcome[T]) OrDefault(fallback T) T {
	if o.failure != nil {
		return fallback
	}
	return o.value
}

// Guard wraps one external call: an error return becomes a logged failed
// Outcome instead of propagating.
func Guard[T any](source string, logger *log.Logger, fn func() (T, error)) Outcome[T] {
	value, err := fn()
	if err != nil {
		if logger != nil {
			logger.Printf("[WARN] %s degraded to no result: %v", source, err)
		}
		return Failed[T](source, err)
	}
	return Ok(value)
}
