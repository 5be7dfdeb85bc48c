package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Workspace lifecycle errors.
	ErrSnapshotBuild    = New("SNAPSHOT_BUILD_FAILED", http.StatusBadGateway, "failed to build workspace snapshot")
	ErrRolloverAborted  = New("ROLLOVER_ABORTED", http.StatusInternalServerError, "term rollover aborted")
	ErrRestoreAborted   = New("RESTORE_ABORTED", http.StatusInternalServerError, "archive restore aborted")
	ErrRolloverState    = New("ROLLOVER_STATE", http.StatusConflict, "invalid rollover phase transition")
	ErrIdentityConflict = New("IDENTITY_CONFLICT", http.StatusConflict, "identity already exists")
	ErrProvisioner      = New("PROVISIONER_ERROR", http.StatusBadGateway, "credential provisioning failed")
	ErrArchiveReadOnly  = New("ARCHIVE_READ_ONLY", http.StatusConflict, "workspace is in read-only archive view")
	ErrPresidentLocked  = New("PRESIDENT_LOCKED", http.StatusConflict, "presidential post is locked")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
