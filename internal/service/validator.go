package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/domain"
)

// Validator checks whether a transition is allowed on the current event state.
// Every check starts with the terminal-state guard, so a CLEARED event always
// reports ErrEventCleared whatever else is wrong with the request.
type Validator struct {
	policy config.ApprovalPolicy
}

// NewValidator creates a new Validator.
func NewValidator(policy config.ApprovalPolicy) *Validator {
	return &Validator{
		policy: policy,
	}
}

// CanMutate rejects any change to a CLEARED event.
func (v *Validator) CanMutate(e *domain.Event) error {
	if e.Status.IsTerminal() {
		return fmt.Errorf("%w: event %s was cleared at %s", domain.ErrEventCleared, e.EventNumber, formatTime(e.ClearedAt))
	}
	return nil
}

// CanCompleteStep validates a step completion: step exists, it is the
// current step, and the actor holds its required role.
func (v *Validator) CanCompleteStep(e *domain.Event, stepNumber int, actor domain.Actor) error {
	if err := v.CanMutate(e); err != nil {
		return err
	}

	step := e.Step(stepNumber)
	if step == nil {
		return fmt.Errorf("%w: event %s has no step %d", domain.ErrStepNotFound, e.EventNumber, stepNumber)
	}

	current := e.CurrentStep()
	if current == nil || current.StepNumber != stepNumber {
		return fmt.Errorf("%w: step %d is %s, current step is %s", domain.ErrStepOutOfSequence, stepNumber, step.Status, describeStep(current))
	}

	if actor.Role != step.RequiredRole {
		return fmt.Errorf("%w: step %d requires %s, actor %s has %s", domain.ErrRoleMismatch, stepNumber, step.RequiredRole, actor.ID, actor.Role)
	}

	return nil
}

// CanAddEvidence validates an evidence attachment.
func (v *Validator) CanAddEvidence(e *domain.Event, stepNumber *int) error {
	if err := v.CanMutate(e); err != nil {
		return err
	}

	if stepNumber != nil && e.Step(*stepNumber) == nil {
		return fmt.Errorf("%w: event %s has no step %d", domain.ErrStepNotFound, e.EventNumber, *stepNumber)
	}

	return nil
}

// CanRequestApproval requires every clearance step to be COMPLETED.
func (v *Validator) CanRequestApproval(e *domain.Event) error {
	if err := v.CanMutate(e); err != nil {
		return err
	}

	if current := e.CurrentStep(); current != nil {
		return fmt.Errorf("%w: event %s is waiting on %s", domain.ErrStepsIncomplete, e.EventNumber, describeStep(current))
	}

	return nil
}

// CanDecide validates an approval decision: the event must be pending
// approval, the actor must hold an approver role (the escalation roles once
// the event was escalated) and, with separation of duties on, must not have
// initiated the event or completed any of its steps.
func (v *Validator) CanDecide(e *domain.Event, actor domain.Actor) error {
	if err := v.CanMutate(e); err != nil {
		return err
	}

	if e.Status != domain.EventStatusPendingApproval {
		return fmt.Errorf("%w: event %s is %s", domain.ErrNotPendingApproval, e.EventNumber, e.Status)
	}

	roles := v.policy.ApproverRoles
	if e.IsEscalated() {
		roles = v.policy.EscalationApproverRoles
	}
	if !slices.Contains(roles, actor.Role) {
		return fmt.Errorf("%w: %s may not decide event %s, allowed roles %v", domain.ErrNotApprover, actor.Role, e.EventNumber, roles)
	}

	if v.policy.SeparationOfDuties {
		if actor.ID == e.InitiatedBy {
			return fmt.Errorf("%w: actor %s initiated event %s", domain.ErrSeparationOfDuties, actor.ID, e.EventNumber)
		}
		if slices.Contains(e.CompletedBy(), actor.ID) {
			return fmt.Errorf("%w: actor %s completed a clearance step of event %s", domain.ErrSeparationOfDuties, actor.ID, e.EventNumber)
		}
	}

	return nil
}

// ShouldEscalate reports whether rejecting e now moves it to ESCALATED.
// Only CRITICAL events escalate, once their rejection count reaches the threshold.
func (v *Validator) ShouldEscalate(e *domain.Event) bool {
	threshold := v.policy.CriticalEscalationThreshold
	if threshold <= 0 || e.Severity != domain.SeverityCritical {
		return false
	}
	return e.RejectionCount+1 >= threshold
}

func describeStep(s *domain.ClearanceStep) string {
	if s == nil {
		return "none (all steps completed)"
	}
	return fmt.Sprintf("step %d (%s, %s)", s.StepNumber, s.Title, s.RequiredRole)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "unknown time"
	}
	return t.Format(time.RFC3339)
}
