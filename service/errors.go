// Package service holds the business logic behind the HTTP handlers:
// catalog, ratings, collections, accounts, images and the assistant.
package service

import (
	"errors"
	"fmt"

	"github.com/raushankrgupta/fragrance-collection/repository"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthorized")
	ErrForbidden  = errors.New("forbidden")
	ErrStorage    = errors.New("storage error")
)

// Error is a classified failure with a message safe to show to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func authError(message string) error {
	return &Error{Kind: ErrAuth, Message: message}
}

func storageError(op string, err error) error {
	return &Error{Kind: ErrStorage, Message: op + " failed", Err: err}
}

// fromRepo classifies a repository error. notFoundMsg is used for
// repository.ErrNotFound and conflictMsg for repository.ErrDuplicate.
func fromRepo(op string, err error, notFoundMsg, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFoundMsg != "":
		return notFound(notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate) && conflictMsg != "":
		return conflict(conflictMsg)
	default:
		return storageError(op, err)
	}
}

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
