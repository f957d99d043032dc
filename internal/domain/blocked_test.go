package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/stopwork/internal/domain"
)

func TestBlockContribution_WorkCenterPropagatesToJobs(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeWorkCenter, lotoSteps)

	rows := domain.BlockContribution(event, []string{"JOB-001", "JOB-002", "JOB-001", ""})

	require.Len(t, rows, 3)
	assert.Equal(t, domain.ScopeTypeWorkCenter, rows[0].Kind)
	assert.Equal(t, "WC-SAW-001", rows[0].ResourceID)
	assert.Equal(t, domain.BlockReasonStopWork, rows[0].Reason)
	for _, r := range rows[1:] {
		assert.Equal(t, domain.ScopeTypeJob, r.Kind)
		assert.Equal(t, domain.BlockReasonWorkCenterBlocked, r.Reason)
	}
}

func TestBlockContribution_JobScopeIgnoresResolvedJobs(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeJob, lotoSteps)

	rows := domain.BlockContribution(event, []string{"JOB-999"})

	require.Len(t, rows, 1)
	assert.Equal(t, domain.ScopeTypeJob, rows[0].Kind)
}

func TestBlockContribution_ClearedEventContributesNothing(t *testing.T) {
	event, _ := newEvent(t, domain.ScopeTypeWorkCenter, lotoSteps)
	event.Status = domain.EventStatusCleared

	assert.Empty(t, domain.BlockContribution(event, []string{"JOB-001"}))
}

func TestBuildBlockedView_GroupsByResource(t *testing.T) {
	rows := []domain.BlockedResource{
		{Kind: domain.ScopeTypeJob, ResourceID: "JOB-002", EventID: "b", EventNumber: "SWA-2026-0002", Reason: domain.BlockReasonStopWork},
		{Kind: domain.ScopeTypeJob, ResourceID: "JOB-001", EventID: "a", EventNumber: "SWA-2026-0001", Reason: domain.BlockReasonWorkCenterBlocked},
		{Kind: domain.ScopeTypeJob, ResourceID: "JOB-002", EventID: "a", EventNumber: "SWA-2026-0001", Reason: domain.BlockReasonWorkCenterBlocked},
		{Kind: domain.ScopeTypeWorkCenter, ResourceID: "WC-SAW-001", EventID: "a", EventNumber: "SWA-2026-0001", Reason: domain.BlockReasonStopWork},
	}

	view := domain.BuildBlockedView(7, time.Now(), rows)

	assert.Equal(t, int64(7), view.Revision)
	assert.Equal(t, 3, view.Count())
	assert.Equal(t, 2, view.EventCount())
	jobs := view.Resources[domain.ScopeTypeJob]
	require.Len(t, jobs, 2)
	assert.Equal(t, "JOB-001", jobs[0].ResourceID)
	require.Len(t, jobs[1].BlockedBy, 2)
	assert.Equal(t, "SWA-2026-0001", jobs[1].BlockedBy[0].EventNumber)

	assert.True(t, view.IsBlocked(domain.ScopeTypeWorkCenter, "WC-SAW-001"))
	assert.False(t, view.IsBlocked(domain.ScopeTypeAsset, "WC-SAW-001"))
	assert.False(t, view.IsBlocked(domain.ScopeTypeJob, "JOB-404"))
}
