// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrMalformedKey       = errors.New("malformed shard key")
	ErrMalformedRow       = errors.New("malformed row")
	ErrStoreNotConfigured = errors.New("blob store is not configured")
	ErrResponseTooLarge   = errors.New("response too large")
	ErrBufferFull         = errors.New("buffer full")
	ErrConnectionLost     = errors.New("connection lost")
)

// BadRequestError represents an invalid request parameter.
type BadRequestError struct {
	Param  string
	Value  string
	Reason string
}

func (e *BadRequestError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("bad %s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("bad %s: %q %s", e.Param, e.Value, e.Reason)
}

func (e *BadRequestError) Is(target error) bool {
	return target == ErrBadRequest
}

// MalformedKeyError represents a stored key that does not match the shard key layout.
type MalformedKeyError struct {
	Key    string
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed shard key %q: %s", e.Key, e.Reason)
}

func (e *MalformedKeyError) Is(target error) bool {
	return target == ErrMalformedKey
}

// MalformedRowError represents a shard row with the wrong number of columns,
// or one that could not be read at all.
type MalformedRowError struct {
	Line    int
	Columns int
	Want    int
	Reason  string
}

func (e *MalformedRowError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed row: line=%d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed row: line=%d columns=%d want=%d", e.Line, e.Columns, e.Want)
}

func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// StorageError represents a blob store operation failure.
type StorageError struct {
	Backend   string
	Operation string
	Key       string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: backend=%s operation=%s key=%s: %v",
		e.Backend, e.Operation, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable defines an interface for errors that can indicate if they are retryable.
type Retryable interface {
	error
	IsRetryable() bool
}

// IsRetryable checks if an error is retryable.
// It first checks if the error implements the Retryable interface,
// then falls back to checking sentinel errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable Retryable
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	if errors.Is(err, ErrConnectionLost) {
		return true
	}

	return false
}

// IsRetryable reports whether a StorageError is worth retrying by the caller.
// Reads and listings are idempotent; decode failures are not transient.
func (e *StorageError) IsRetryable() bool {
	if errors.Is(e.Err, ErrMalformedRow) || errors.Is(e.Err, ErrMalformedKey) {
		return false
	}
	return e.Operation == "get" || e.Operation == "list" || e.Operation == "read"
}

// IsBadRequest reports whether err is a client error.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}
