package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/domain"
)

func TestReplay_ReproducesProjection(t *testing.T) {
	event, trail := newEvent(t, domain.ScopeTypeWorkCenter, lotoSteps[:2])
	at := event.InitiatedAt.Add(10 * time.Minute)

	ev := domain.Evidence{
		ID:             "ev-1",
		EventID:        event.ID,
		Type:           domain.EvidenceTypePhoto,
		Description:    "isolation point",
		FileRef:        "s3://evidence/ev-1.jpg",
		UploadedBy:     operator.ID,
		UploadedByRole: operator.Role,
		UploadedAt:     at,
	}
	evEntry, err := domain.EvidenceAddition(event, ev)
	require.NoError(t, err)
	trail = apply(t, event, trail, evEntry)
	trail = apply(t, event, trail, domain.StepCompletion(event, 1, operator, "", at))
	trail = apply(t, event, trail, domain.StepCompletion(event, 2, supervisor, "", at))
	trail = apply(t, event, trail, domain.Rejection(event, manager, "redo", false, at))
	trail = apply(t, event, trail, domain.ApprovalRequest(event, supervisor, at))
	trail = apply(t, event, trail, domain.Clearance(event, manager, "", at))

	replayed, err := domain.Replay(trail)
	require.NoError(t, err)

	assert.NoError(t, domain.CompareProjection(event, replayed))
	assert.Equal(t, domain.EventStatusCleared, replayed.Status)
	assert.Equal(t, int64(len(trail)), replayed.Revision)
	require.Len(t, replayed.Evidence, 1)
	assert.Equal(t, "s3://evidence/ev-1.jpg", replayed.Evidence[0].FileRef)
	assert.Equal(t, 1, replayed.RejectionCount)
}

func TestReplay_EmptyTrail(t *testing.T) {
	_, err := domain.Replay(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyAuditTrail)
}

func TestReplay_MustStartWithInitiation(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeJob, lotoSteps[:1])
	entry := domain.StepCompletion(event, 1, operator, "", time.Now())

	_, err := domain.Replay([]*domain.AuditEntry{entry})
	assert.Error(t, err)
}

func TestCompareProjection_DetectsDrift(t *testing.T) {
	event, trail := newEvent(t, domain.ScopeTypeJob, lotoSteps[:2])
	replayed, err := domain.Replay(trail)
	require.NoError(t, err)

	event.Steps[0].Status = domain.StepStatusCompleted

	err = domain.CompareProjection(event, replayed)
	assert.ErrorIs(t, err, domain.ErrProjectionMismatch)
}
