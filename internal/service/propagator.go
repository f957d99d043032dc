package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/feed"
	"github.com/mtlprog/stopwork/internal/jobassign"
	"github.com/mtlprog/stopwork/internal/metrics"
	"github.com/mtlprog/stopwork/internal/repository"
)

// Resolution is the outcome of a job lookup done before a transition.
// A non-nil Err means the jobs are unknown and the blocked set must not narrow.
type Resolution struct {
	Jobs []string
	Err  error
}

// BlockPropagator keeps the materialized blocked set in step with events.
//
// Job lookups run before the transition's transaction so the external call
// never holds row locks. The rows are written inside the transaction, and
// snapshots are published after commit.
type BlockPropagator struct {
	resolver  jobassign.Resolver
	blocked   *repository.BlockedRepository
	timeout   time.Duration
	publisher feed.Publisher

	publishMu     sync.Mutex
	lastPublished int64
}

// NewBlockPropagator creates a new BlockPropagator. publisher may be nil.
func NewBlockPropagator(
	resolver jobassign.Resolver,
	blocked *repository.BlockedRepository,
	timeout time.Duration,
	publisher feed.Publisher,
) *BlockPropagator {
	return &BlockPropagator{
		resolver:      resolver,
		blocked:       blocked,
		timeout:       timeout,
		publisher:     publisher,
		lastPublished: -1,
	}
}

// Resolve looks up the jobs an event's scope blocks transitively.
// Scopes that do not propagate resolve to no jobs without a lookup.
func (p *BlockPropagator) Resolve(ctx context.Context, scopeType domain.ScopeType, scopeID string) Resolution {
	if !scopeType.PropagatesToJobs() {
		return Resolution{}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	jobs, err := p.resolver.ResolveJobsFor(ctx, scopeType, scopeID)
	metrics.JobResolutionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.JobResolutionFailures.WithLabelValues(string(scopeType)).Inc()
		slog.Warn("job assignment lookup failed, keeping blocked set wide",
			"scope_type", scopeType,
			"scope_id", scopeID,
			"error", err,
		)
		return Resolution{Err: fmt.Errorf("%w: %s %s: %v", domain.ErrJobResolution, scopeType, scopeID, err)}
	}

	return Resolution{Jobs: jobs}
}

// Apply rewrites the event's contribution to the blocked set inside tx and
// bumps the set revision. When the lookup failed, rows already present for
// the event stay and only the direct scope row is ensured.
func (p *BlockPropagator) Apply(ctx context.Context, tx pgx.Tx, e *domain.Event, res Resolution) (int64, error) {
	var err error
	switch {
	case !e.IsBlocking():
		err = p.blocked.DeleteForEvent(ctx, tx, e.ID)
	case res.Err != nil:
		err = p.blocked.AddForEvent(ctx, tx, domain.BlockContribution(e, nil))
	default:
		err = p.blocked.ReplaceForEvent(ctx, tx, e.ID, domain.BlockContribution(e, res.Jobs))
	}
	if err != nil {
		return 0, fmt.Errorf("update blocked set for event %s: %w", e.ID, err)
	}

	revision, err := p.blocked.BumpRevision(ctx, tx)
	if err != nil {
		return 0, err
	}
	return revision, nil
}

// Snapshot returns the current blocked set.
func (p *BlockPropagator) Snapshot(ctx context.Context) (*domain.BlockedResourceView, error) {
	return p.blocked.Snapshot(ctx)
}

// Publish reads the committed blocked set and pushes it to the feed.
// Publications are serialized and never go backwards in revision; force
// re-sends the current revision for at-least-once delivery.
func (p *BlockPropagator) Publish(ctx context.Context, force bool) {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	view, err := p.blocked.Snapshot(ctx)
	if err != nil {
		slog.Error("failed to read blocked set for publication", "error", err)
		return
	}

	if view.Revision < p.lastPublished || (view.Revision == p.lastPublished && !force) {
		return
	}
	p.lastPublished = view.Revision

	metrics.BlockedSetRevision.Set(float64(view.Revision))
	metrics.ActiveEvents.Set(float64(view.EventCount()))
	for _, kind := range []domain.ScopeType{
		domain.ScopeTypeJob, domain.ScopeTypeWorkCenter, domain.ScopeTypeAsset,
		domain.ScopeTypeArea, domain.ScopeTypeLocation, domain.ScopeTypeOperation,
	} {
		metrics.BlockedResources.WithLabelValues(string(kind)).Set(float64(len(view.Resources[kind])))
	}

	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, view); err != nil {
		slog.Warn("blocked set publication failed", "revision", view.Revision, "error", err)
	}
}

// Run re-publishes the current snapshot every interval until ctx is done.
func (p *BlockPropagator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("blocked set resend loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("blocked set resend loop stopped")
			return
		case <-ticker.C:
			p.Publish(ctx, true)
		}
	}
}
