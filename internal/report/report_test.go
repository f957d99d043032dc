package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/report"
)

func TestClearanceRecord(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	by := "op-1"
	role := domain.RoleOperator
	step := 1
	cleared := domain.EventStatusCleared

	event := &domain.Event{
		ID:              "9b7e8d6c-0000-4000-8000-000000000001",
		EventNumber:     "SWA-2026-0001",
		ScopeType:       domain.ScopeTypeWorkCenter,
		ScopeID:         "WC-SAW-001",
		ReasonCode:      "MISSING_LOTO_PERMIT",
		Severity:        domain.SeverityCritical,
		Description:     "Blade guard removed, permit missing",
		Status:          domain.EventStatusCleared,
		InitiatedBy:     by,
		InitiatedByRole: role,
		InitiatedAt:     at,
		ClearedBy:       &by,
		ClearedAt:       &at,
		Steps: []domain.ClearanceStep{
			{StepNumber: 1, Title: "Stop work and make safe", RequiredRole: domain.RoleOperator, Status: domain.StepStatusCompleted, CompletedBy: &by, CompletedAt: &at},
		},
		Evidence: []domain.Evidence{
			{Type: domain.EvidenceTypePhoto, FileRef: "s3://evidence/barricade.jpg", StepNumber: &step, UploadedBy: by, UploadedAt: at},
		},
	}
	trail := []*domain.AuditEntry{
		{ID: 1, Action: domain.AuditActionInitiated, Description: "initiated", PerformedBy: by, PerformedByRole: role, PerformedAt: at},
		{ID: 2, Action: domain.AuditActionCleared, Description: "cleared", PerformedBy: "ehs-2", PerformedByRole: domain.RoleEHS, PerformedAt: at, NewStatus: &cleared},
	}

	pdf, err := report.ClearanceRecord(event, trail, at)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 1000)
}

func TestClearanceRecord_NoEvidence(t *testing.T) {
	event := &domain.Event{
		EventNumber: "SWA-2026-0002",
		Status:      domain.EventStatusActive,
		InitiatedAt: time.Now(),
	}

	pdf, err := report.ClearanceRecord(event, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
