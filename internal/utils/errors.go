package utils

import "errors"

var (
	// ErrStoreUnavailable: a read failed, nothing was changed.
	ErrStoreUnavailable = errors.New("progress store unavailable")
	// ErrStoreWriteFailed: a write after a successful read was rejected, timed out or
	// cancelled. The change must be treated as not applied.
	ErrStoreWriteFailed = errors.New("progress store write failed")
	ErrProgressNotFound = errors.New("progress record not found")
)

// StoreError carries the failure kind together with the underlying cause, so callers can
// test for either with errors.Is.
type StoreError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewStoreUnavailable(op string, err error) error {
	return &StoreError{Kind: ErrStoreUnavailable, Op: op, Err: err}
}

func NewStoreWriteFailed(op string, err error) error {
	return &StoreError{Kind: ErrStoreWriteFailed, Op: op, Err: err}
}
