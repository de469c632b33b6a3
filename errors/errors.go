package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrAuthentication     = fmt.Errorf("authentication failed")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrNotFound        = fmt.Errorf("not found")
	ErrChatNotFound    = fmt.Errorf("chat %w", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("message %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrValidation  = fmt.Errorf("validation failed")
	ErrPersistence = fmt.Errorf("persistence failed")
	ErrForbidden   = fmt.Errorf("forbidden")
	ErrConflict    = fmt.Errorf("conflict")

	// ErrInternalInvariant means the hub state would become inconsistent.
	ErrInternalInvariant   = fmt.Errorf("internal invariant violated")
	ErrDuplicateConnection = fmt.Errorf("%w: duplicate connection handle", ErrInternalInvariant)
	ErrHubStopped          = fmt.Errorf("hub stopped")

	ErrSinkFull   = fmt.Errorf("sink buffer full")
	ErrSinkClosed = fmt.Errorf("sink closed")
)

// Wire codes sent to clients inside error frames.
const (
	CodeAuthentication = "authentication"
	CodeNotFound       = "not_found"
	CodeValidation     = "validation"
	CodePersistence    = "persistence"
	CodeForbidden      = "forbidden"
	CodeConflict       = "conflict"
	CodeInternal       = "internal"
)

// Code maps an error chain to its wire code. Unknown errors are internal.
func Code(err error) string {
	switch {
	case Is(err, ErrAuthentication), Is(err, ErrInvalidCredentials):
		return CodeAuthentication
	case Is(err, ErrNotFound):
		return CodeNotFound
	case Is(err, ErrValidation), Is(err, ErrInvalidPassword):
		return CodeValidation
	case Is(err, ErrForbidden):
		return CodeForbidden
	case Is(err, ErrConflict), Is(err, ErrUserAlreadyExists):
		return CodeConflict
	case Is(err, ErrPersistence):
		return CodePersistence
	default:
		return CodeInternal
	}
}

// Message is the text a client may see for err. Server side failures
// are reduced to a generic text, their detail belongs in the logs.
func Message(err error) string {
	switch Code(err) {
	case CodePersistence:
		return "storage unavailable"
	case CodeInternal:
		return "internal error"
	default:
		return err.Error()
	}
}

// Internal reports whether err is a server side failure.
func Internal(err error) bool {
	code := Code(err)
	return code == CodePersistence || code == CodeInternal
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func New(text string) error {
	return stderrors.New(text)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
