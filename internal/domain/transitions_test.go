package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/domain"
)

var lotoSteps = []domain.StepTemplate{
	{Title: "Stop and make safe", RequiredRole: domain.RoleOperator},
	{Title: "Verify energy isolation", RequiredRole: domain.RoleSupervisor},
	{Title: "Issue LOTO permit", RequiredRole: domain.RoleEHS},
	{Title: "Verify try-out", RequiredRole: domain.RoleSupervisor},
}

var (
	operator   = domain.Actor{ID: "op-1", Role: domain.RoleOperator}
	supervisor = domain.Actor{ID: "sup-1", Role: domain.RoleSupervisor}
	ehs        = domain.Actor{ID: "ehs-1", Role: domain.RoleEHS}
	manager    = domain.Actor{ID: "sm-1", Role: domain.RoleSafetyManager}
)

func newEvent(t *testing.T, scope domain.ScopeType, steps []domain.StepTemplate) (*domain.Event, []*domain.AuditEntry) {
	t.Helper()

	seed := &domain.Event{
		ID:              "evt-1",
		EventNumber:     "SWA-2026-0001",
		ScopeType:       scope,
		ScopeID:         "WC-SAW-001",
		ReasonCode:      "MISSING_LOTO_PERMIT",
		Severity:        domain.SeverityCritical,
		InitiatedBy:     operator.ID,
		InitiatedByRole: operator.Role,
		InitiatedAt:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	entry, err := domain.Initiation(seed, steps)
	require.NoError(t, err)

	event := &domain.Event{}
	require.NoError(t, event.Apply(entry))
	return event, []*domain.AuditEntry{entry}
}

func apply(t *testing.T, e *domain.Event, trail []*domain.AuditEntry, entry *domain.AuditEntry) []*domain.AuditEntry {
	t.Helper()
	require.NoError(t, e.Apply(entry))
	entry.ID = int64(len(trail) + 1)
	return append(trail, entry)
}

func TestInitiation_FirstStepInProgress(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeWorkCenter, lotoSteps)

	assert.Equal(t, domain.EventStatusActive, event.Status)
	assert.Equal(t, int64(1), event.Revision)
	require.Len(t, event.Steps, 4)
	assert.Equal(t, domain.StepStatusInProgress, event.Steps[0].Status)
	for _, s := range event.Steps[1:] {
		assert.Equal(t, domain.StepStatusPending, s.Status)
	}
	assert.Equal(t, 1, event.CurrentStep().StepNumber)
}

func TestStepCompletion_AdvancesSequence(t *testing.T) {
	event, trail := newEvent(t, domain.ScopeTypeWorkCenter, lotoSteps)
	at := event.InitiatedAt.Add(time.Minute)

	trail = apply(t, event, trail, domain.StepCompletion(event, 1, operator, "area barricaded", at))
	assert.Equal(t, domain.StepStatusCompleted, event.Steps[0].Status)
	assert.Equal(t, domain.StepStatusInProgress, event.Steps[1].Status)
	assert.Equal(t, domain.EventStatusUnderInvestigation, event.Status)
	assert.Equal(t, "op-1", *event.Steps[0].CompletedBy)
	assert.Equal(t, "area barricaded", event.Steps[0].Notes)

	trail = apply(t, event, trail, domain.StepCompletion(event, 2, supervisor, "", at))
	assert.Equal(t, domain.EventStatusUnderInvestigation, event.Status)

	trail = apply(t, event, trail, domain.StepCompletion(event, 3, ehs, "", at))
	assert.Equal(t, domain.EventStatusPendingVerification, event.Status)

	trail = apply(t, event, trail, domain.StepCompletion(event, 4, supervisor, "", at))
	assert.Equal(t, domain.EventStatusPendingApproval, event.Status)
	assert.True(t, event.AllStepsCompleted())
	assert.Nil(t, event.CurrentStep())
	assert.Len(t, trail, 5)
	assert.Equal(t, int64(5), event.Revision)
}

func TestStatusAfterStep_SingleStepTemplate(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeJob, lotoSteps[:1])

	assert.Equal(t, domain.EventStatusPendingApproval, domain.StatusAfterStep(event, 1))
}

func TestRejection_ReturnsToMitigationAndKeepsSteps(t *testing.T) {
	event, trail := newEvent(t, domain.ScopeTypeWorkCenter, lotoSteps[:2])
	at := event.InitiatedAt.Add(time.Hour)
	trail = apply(t, event, trail, domain.StepCompletion(event, 1, operator, "", at))
	trail = apply(t, event, trail, domain.StepCompletion(event, 2, supervisor, "", at))

	entry := domain.Rejection(event, manager, "insufficient isolation", false, at)
	_ = apply(t, event, trail, entry)

	assert.Equal(t, domain.AuditActionClearanceRejected, entry.Action)
	assert.Equal(t, "insufficient isolation", entry.Notes)
	assert.Equal(t, domain.EventStatusMitigationInProgress, event.Status)
	assert.Equal(t, 1, event.RejectionCount)
	assert.Nil(t, event.EscalatedAt)
	assert.True(t, event.AllStepsCompleted())
}

func TestRejection_Escalates(t *testing.T) {
	event, trail := newEvent(t, domain.ScopeTypeAsset, lotoSteps[:1])
	at := event.InitiatedAt.Add(time.Hour)
	trail = apply(t, event, trail, domain.StepCompletion(event, 1, operator, "", at))

	_ = apply(t, event, trail, domain.Rejection(event, manager, "second failure", true, at))

	assert.Equal(t, domain.EventStatusEscalated, event.Status)
	require.NotNil(t, event.EscalatedAt)
	assert.True(t, event.IsBlocking())
}

func TestClearance_SetsClearedFields(t *testing.T) {
	event, trail := newEvent(t, domain.ScopeTypeJob, lotoSteps[:1])
	at := event.InitiatedAt.Add(2 * time.Hour)
	trail = apply(t, event, trail, domain.StepCompletion(event, 1, operator, "", at))

	_ = apply(t, event, trail, domain.Clearance(event, manager, "ok to resume", at))

	assert.Equal(t, domain.EventStatusCleared, event.Status)
	assert.True(t, event.Status.IsTerminal())
	assert.False(t, event.IsBlocking())
	require.NotNil(t, event.ClearedBy)
	assert.Equal(t, "sm-1", *event.ClearedBy)
	assert.Equal(t, at, *event.ClearedAt)
}

func TestApply_UnknownAction(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeJob, lotoSteps[:1])

	err := event.Apply(&domain.AuditEntry{Action: "REOPENED"})
	assert.Error(t, err)
}

func TestDecision_IsValid(t *testing.T) {
	assert.True(t, domain.DecisionApprove.IsValid())
	assert.True(t, domain.DecisionReject.IsValid())
	assert.False(t, domain.Decision("MAYBE").IsValid())
}
