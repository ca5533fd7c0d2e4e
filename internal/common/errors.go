// Package common defines shared constants and sentinel errors used across
// client and server layers of SrefHub. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorIncorrectMetadata = errors.New("incorrect metadata")
	ErrorValidation        = errors.New("validation error")
	ErrorAlreadyExists     = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Vote ledger errors.
	ErrUnauthenticated   = errors.New("please sign in to vote")
	ErrSelfVoteForbidden = errors.New("you can't vote on your own codes")
	ErrDuplicateVote     = errors.New("you have already voted on this code")
	ErrVoteInProgress    = errors.New("vote already in progress")
	ErrVoteWriteFailed   = errors.New("failed to vote on code")

	// Profile provisioning errors.
	ErrProfileCreationFailed = errors.New("failed to create user profile")

	// Catalog errors.
	ErrAlreadySaved = errors.New("code already saved to your library")

	// Waitlist errors.
	ErrAlreadyOnWaitlist = errors.New("you are already on the waitlist")
)

// ConstraintViolationError is the raw "unique constraint violated" signal
// coming from the persistence gateway. Field names the logical column the
// constraint guards ("id", "username", "user_id,item_id", ...).
type ConstraintViolationError struct {
	Field      string
	Constraint string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint violation on %s (%s)", e.Field, e.Constraint)
	}
	return fmt.Sprintf("constraint violation on %s", e.Field)
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// ConstraintViolationOn reports whether err carries a constraint violation
// for the given field.
func ConstraintViolationOn(err error, field string) bool {
	var cv *ConstraintViolationError
	if !errors.As(err, &cv) {
		return false
	}
	return cv.Field == field
}
