package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/domain"
)

func strPtr(s string) *string { return &s }

// pendingEvent returns a three-step event waiting for approval.
func pendingEvent() *domain.Event {
	return &domain.Event{
		ID:          "evt-1",
		EventNumber: "SWA-2026-0001",
		Severity:    domain.SeverityCritical,
		Status:      domain.EventStatusPendingApproval,
		InitiatedBy: "op-1",
		Steps: []domain.ClearanceStep{
			{StepNumber: 1, RequiredRole: domain.RoleOperator, Status: domain.StepStatusCompleted, CompletedBy: strPtr("op-1")},
			{StepNumber: 2, RequiredRole: domain.RoleSupervisor, Status: domain.StepStatusCompleted, CompletedBy: strPtr("sup-1")},
			{StepNumber: 3, RequiredRole: domain.RoleEHS, Status: domain.StepStatusCompleted, CompletedBy: strPtr("ehs-1")},
		},
	}
}

func activeEvent() *domain.Event {
	e := pendingEvent()
	e.Status = domain.EventStatusActive
	for i := range e.Steps {
		e.Steps[i].Status = domain.StepStatusPending
		e.Steps[i].CompletedBy = nil
	}
	e.Steps[0].Status = domain.StepStatusInProgress
	return e
}

func TestValidator_CanCompleteStep(t *testing.T) {
	v := NewValidator(config.DefaultApprovalPolicy())
	operator := domain.Actor{ID: "op-2", Role: domain.RoleOperator}

	tests := []struct {
		name  string
		event func() *domain.Event
		step  int
		actor domain.Actor
		want  error
	}{
		{name: "current step with matching role", event: activeEvent, step: 1, actor: operator},
		{name: "missing step", event: activeEvent, step: 4, actor: operator, want: domain.ErrStepNotFound},
		{name: "future step", event: activeEvent, step: 2, actor: domain.Actor{ID: "sup-1", Role: domain.RoleSupervisor}, want: domain.ErrStepOutOfSequence},
		{name: "wrong role", event: activeEvent, step: 1, actor: domain.Actor{ID: "ehs-1", Role: domain.RoleEHS}, want: domain.ErrRoleMismatch},
		{name: "all steps done", event: pendingEvent, step: 3, actor: domain.Actor{ID: "ehs-1", Role: domain.RoleEHS}, want: domain.ErrStepOutOfSequence},
		{
			name: "cleared wins over missing step",
			event: func() *domain.Event {
				e := pendingEvent()
				e.Status = domain.EventStatusCleared
				return e
			},
			step:  99,
			actor: operator,
			want:  domain.ErrEventCleared,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CanCompleteStep(tt.event(), tt.step, tt.actor)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidator_CanDecide(t *testing.T) {
	v := NewValidator(config.DefaultApprovalPolicy())

	tests := []struct {
		name  string
		event func() *domain.Event
		actor domain.Actor
		want  error
	}{
		{name: "independent approver", event: pendingEvent, actor: domain.Actor{ID: "ehs-9", Role: domain.RoleEHS}},
		{name: "not pending", event: activeEvent, actor: domain.Actor{ID: "ehs-9", Role: domain.RoleEHS}, want: domain.ErrNotPendingApproval},
		{name: "role not allowed", event: pendingEvent, actor: domain.Actor{ID: "sup-9", Role: domain.RoleSupervisor}, want: domain.ErrNotApprover},
		{name: "step completer", event: pendingEvent, actor: domain.Actor{ID: "ehs-1", Role: domain.RoleEHS}, want: domain.ErrSeparationOfDuties},
		{
			name: "initiator",
			event: func() *domain.Event {
				e := pendingEvent()
				e.InitiatedBy = "pm-1"
				return e
			},
			actor: domain.Actor{ID: "pm-1", Role: domain.RolePlantManager},
			want:  domain.ErrSeparationOfDuties,
		},
		{
			name: "escalated needs plant manager",
			event: func() *domain.Event {
				e := pendingEvent()
				at := time.Now()
				e.EscalatedAt = &at
				return e
			},
			actor: domain.Actor{ID: "ehs-9", Role: domain.RoleEHS},
			want:  domain.ErrNotApprover,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CanDecide(tt.event(), tt.actor)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidator_SeparationOfDutiesDisabled(t *testing.T) {
	policy := config.DefaultApprovalPolicy()
	policy.SeparationOfDuties = false
	v := NewValidator(policy)

	assert.NoError(t, v.CanDecide(pendingEvent(), domain.Actor{ID: "ehs-1", Role: domain.RoleEHS}))
}

func TestValidator_CanRequestApproval(t *testing.T) {
	v := NewValidator(config.DefaultApprovalPolicy())

	assert.ErrorIs(t, v.CanRequestApproval(activeEvent()), domain.ErrStepsIncomplete)

	rejected := pendingEvent()
	rejected.Status = domain.EventStatusMitigationInProgress
	assert.NoError(t, v.CanRequestApproval(rejected))
}

func TestValidator_CanAddEvidence(t *testing.T) {
	v := NewValidator(config.DefaultApprovalPolicy())
	step := 2
	missing := 5

	assert.NoError(t, v.CanAddEvidence(activeEvent(), nil))
	assert.NoError(t, v.CanAddEvidence(activeEvent(), &step))
	assert.ErrorIs(t, v.CanAddEvidence(activeEvent(), &missing), domain.ErrStepNotFound)
}

func TestValidator_ShouldEscalate(t *testing.T) {
	v := NewValidator(config.DefaultApprovalPolicy())

	e := pendingEvent()
	assert.False(t, v.ShouldEscalate(e), "first rejection")

	e.RejectionCount = 1
	assert.True(t, v.ShouldEscalate(e), "second rejection")

	e.Severity = domain.SeverityHigh
	assert.False(t, v.ShouldEscalate(e), "only CRITICAL escalates")

	policy := config.DefaultApprovalPolicy()
	policy.CriticalEscalationThreshold = 0
	e.Severity = domain.SeverityCritical
	assert.False(t, NewValidator(policy).ShouldEscalate(e), "disabled")
}

func TestSLA(t *testing.T) {
	sla := NewSLA(config.DefaultSLA())
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	e := activeEvent()
	e.Severity = domain.SeverityCritical
	e.InitiatedAt = start

	deadline := sla.Deadline(e)
	require.NotNil(t, deadline)
	assert.Equal(t, start.Add(4*time.Hour), *deadline)

	assert.False(t, sla.IsOverdue(e, start.Add(3*time.Hour)))
	assert.True(t, sla.IsOverdue(e, start.Add(5*time.Hour)))

	e.Status = domain.EventStatusCleared
	assert.Nil(t, sla.Deadline(e))
	assert.False(t, sla.IsOverdue(e, start.Add(100*time.Hour)))

	cutoffs := sla.Cutoffs(start)
	assert.Equal(t, start.Add(-4*time.Hour), cutoffs[domain.SeverityCritical])
	assert.Equal(t, start.Add(-168*time.Hour), cutoffs[domain.SeverityLow])
}

func TestSLA_ZeroTargetDisablesCheck(t *testing.T) {
	cfg := config.DefaultSLA()
	cfg.Low = 0
	sla := NewSLA(cfg)

	e := activeEvent()
	e.Severity = domain.SeverityLow
	e.InitiatedAt = time.Now().Add(-1000 * time.Hour)

	assert.Nil(t, sla.Deadline(e))
	assert.NotContains(t, sla.Cutoffs(time.Now()), domain.SeverityLow)
}
