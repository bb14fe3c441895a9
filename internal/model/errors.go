package model

import (
	"errors"
	"fmt"
)

// MalformedResponseError reports provider output that could not be parsed into
// a list of leads. Raw keeps the provider text for diagnostics.
type MalformedResponseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed provider response: %s: %v", e.Reason, e.Err)
	}
	return "malformed provider response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// InvalidLeadError reports a record that cannot be stored. Index is the
// position in the source batch, or -1 for a single record.
type InvalidLeadError struct {
	Index  int
	Reason string
}

func (e *InvalidLeadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid lead at index %d: %s", e.Index, e.Reason)
	}
	return "invalid lead: " + e.Reason
}

// InvalidTransitionError reports a status change the lifecycle graph forbids.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	switch {
	case e.From == e.To:
		return fmt.Sprintf("lead is already %s", e.From)
	case e.From.Terminal():
		return fmt.Sprintf("lead is %s and can no longer change status", e.From)
	case !e.To.Valid():
		return fmt.Sprintf("unknown status %q", e.To)
	default:
		return fmt.Sprintf("cannot move lead from %s to %s", e.From, e.To)
	}
}

// NotAuthenticatedError reports an operation attempted without a user identity.
type NotAuthenticatedError struct {
	Op string
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("%s: user not authenticated", e.Op)
}

// NotFoundError reports a missing (or foreign-owned) entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// InvalidInputError reports a rejected group, campaign or event field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsMalformedResponse reports whether err wraps a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// IsInvalidLead reports whether err wraps an InvalidLeadError.
func IsInvalidLead(err error) bool {
	var target *InvalidLeadError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err wraps an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsNotAuthenticated reports whether err wraps a NotAuthenticatedError.
func IsNotAuthenticated(err error) bool {
	var target *NotAuthenticatedError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidInput reports whether err wraps an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
