package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// StateError marks a transition attempted from a state that forbids it.
type StateError struct {
	From string
	Msg  string
}

func (e StateError) Error() string {
	if e.Msg != "" && e.From != "" {
		return fmt.Sprintf("invalid in state %s: %s", e.From, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.From != "" {
		return fmt.Sprintf("operation not allowed in state %s", e.From)
	}
	return "invalid state"
}

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "forbidden"
}

// WindowExpiredError marks an action attempted after the payment deadline.
type WindowExpiredError struct {
	Msg string
}

func (e WindowExpiredError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "payment window expired"
}

// AlreadySubmittedError marks an attempt to replace an immutable payment proof.
type AlreadySubmittedError struct {
	Msg string
}

func (e AlreadySubmittedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "payment proof already submitted"
}

// VersionConflictError means a concurrent writer won; the caller should
// re-read and retry.
type VersionConflictError struct {
	Resource string
	Err      error
}

func (e VersionConflictError) Error() string {
	if e.Resource == "" {
		return "version conflict"
	}
	return fmt.Sprintf("%s was modified concurrently", e.Resource)
}

func (e VersionConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target StateError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsWindowExpired(err error) bool {
	var target WindowExpiredError
	return errors.As(err, &target)
}

func IsAlreadySubmitted(err error) bool {
	var target AlreadySubmittedError
	return errors.As(err, &target)
}

func IsVersionConflict(err error) bool {
	var target VersionConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
