package domain

import (
	"errors"
	"fmt"
)

// Error classes returned by the stop-work workflow. Specific errors wrap one
// of these so callers can branch with errors.Is on either level.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrAuthorization   = errors.New("not authorized")
	ErrSequence        = errors.New("step out of sequence")
	ErrPrecondition    = errors.New("precondition failed")
	ErrTerminalState   = errors.New("event is in terminal state")
	ErrDependency      = errors.New("dependency unavailable")
	ErrUnauthenticated = errors.New("authentication required")
)

// Domain-specific errors for business logic validation.
var (
	// Validation errors
	ErrUnknownScopeType    = fmt.Errorf("%w: unknown scope type", ErrValidation)
	ErrEmptyScopeID        = fmt.Errorf("%w: scope id is required", ErrValidation)
	ErrUnknownReasonCode   = fmt.Errorf("%w: unknown reason code", ErrValidation)
	ErrInvalidSeverity     = fmt.Errorf("%w: invalid severity", ErrValidation)
	ErrInvalidDecision     = fmt.Errorf("%w: decision must be APPROVE or REJECT", ErrValidation)
	ErrInvalidEvidenceType = fmt.Errorf("%w: evidence type must be PHOTO or DOCUMENT", ErrValidation)
	ErrEmptyFileRef        = fmt.Errorf("%w: file reference is required", ErrValidation)
	ErrEmptyNotes          = fmt.Errorf("%w: notes are required", ErrValidation)

	// Lookup errors
	ErrEventNotFound = fmt.Errorf("%w: event", ErrNotFound)
	ErrStepNotFound  = fmt.Errorf("%w: clearance step", ErrNotFound)

	// Authorization errors
	ErrRoleMismatch       = fmt.Errorf("%w: role does not match required role", ErrAuthorization)
	ErrNotApprover        = fmt.Errorf("%w: role may not decide clearance", ErrAuthorization)
	ErrSeparationOfDuties = fmt.Errorf("%w: approver took part in the event", ErrAuthorization)

	// Sequence errors
	ErrStepOutOfSequence = fmt.Errorf("%w: not the current step", ErrSequence)

	// Precondition errors
	ErrStepsIncomplete        = fmt.Errorf("%w: clearance steps incomplete", ErrPrecondition)
	ErrNotPendingApproval     = fmt.Errorf("%w: event is not pending approval", ErrPrecondition)
	ErrConcurrentModification = fmt.Errorf("%w: event was modified concurrently", ErrPrecondition)

	// Terminal errors
	ErrEventCleared = fmt.Errorf("%w: event is cleared", ErrTerminalState)

	// Dependency errors
	ErrJobResolution = fmt.Errorf("%w: job assignment lookup failed", ErrDependency)

	// Audit errors
	ErrProjectionMismatch = errors.New("event projection does not match audit trail")
	ErrEmptyAuditTrail    = errors.New("audit trail is empty")
)
