package board

import (
	"errors"
	"fmt"

	"github.com/roach88/threadboard/internal/store"
)

// Code categorizes a failed board operation.
type Code string

const (
	// CodeValidation indicates a missing author or text.
	CodeValidation Code = "VALIDATION"

	// CodeParentNotFound indicates a reply to an id that is not in the forest.
	CodeParentNotFound Code = "PARENT_NOT_FOUND"

	// CodeStorageUnavailable indicates the store could not be written.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// CodeQuotaExceeded indicates the forest no longer fits in its slot.
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"
)

// Error is returned by every failed Service operation.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Sentinels for errors.Is. Matching is by Code only.
var (
	ErrValidation         = &Error{Code: CodeValidation}
	ErrParentNotFound     = &Error{Code: CodeParentNotFound}
	ErrStorageUnavailable = &Error{Code: CodeStorageUnavailable}
	ErrQuotaExceeded      = &Error{Code: CodeQuotaExceeded}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// storageError classifies a failed save.
func storageError(op string, err error) *Error {
	code := CodeStorageUnavailable
	if errors.Is(err, store.ErrQuotaExceeded) {
		code = CodeQuotaExceeded
	}
	return &Error{Code: code, Message: op, Err: err}
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
