package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/metrics"
	"github.com/mtlprog/stopwork/internal/repository"
	"github.com/mtlprog/stopwork/internal/storage"
	"github.com/mtlprog/stopwork/internal/taxonomy"
)

// StopWorkService coordinates stop-work events, their clearance workflow,
// the approval gate and the audit trail.
//
// Mutations that succeed but could not resolve transitive jobs return the
// updated event together with an error wrapping domain.ErrJobResolution.
// The transition is committed in that case; callers report it as a warning.
type StopWorkService struct {
	pool       *pgxpool.Pool
	eventRepo  *repository.EventRepository
	auditRepo  *repository.AuditRepository
	propagator *BlockPropagator
	catalog    *taxonomy.Catalog
	validator  *Validator
	sla        SLA
	evidence   storage.ObjectStore
	now        func() time.Time
}

// NewStopWorkService creates a new StopWorkService.
func NewStopWorkService(
	pool *pgxpool.Pool,
	eventRepo *repository.EventRepository,
	auditRepo *repository.AuditRepository,
	propagator *BlockPropagator,
	catalog *taxonomy.Catalog,
	policy config.ApprovalPolicy,
	sla SLA,
) *StopWorkService {
	return &StopWorkService{
		pool:       pool,
		eventRepo:  eventRepo,
		auditRepo:  auditRepo,
		propagator: propagator,
		catalog:    catalog,
		validator:  NewValidator(policy),
		sla:        sla,
		now:        defaultNow,
	}
}

// defaultNow truncates to the database's timestamp precision so a stored
// projection and one replayed from the audit trail compare equal.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SetEvidenceStore enables file uploads for evidence.
func (s *StopWorkService) SetEvidenceStore(store storage.ObjectStore) {
	s.evidence = store
}

// SetClock replaces the time source. Used by tests and the overdue checker.
func (s *StopWorkService) SetClock(now func() time.Time) {
	s.now = now
}

// SLA returns the clearance targets used for overdue checks.
func (s *StopWorkService) SLA() SLA {
	return s.sla
}

// Catalog returns the reason-code taxonomy.
func (s *StopWorkService) Catalog() *taxonomy.Catalog {
	return s.catalog
}

// Now returns the service clock.
func (s *StopWorkService) Now() time.Time {
	return s.now()
}

// CreateEventInput holds the caller-supplied fields of a new event.
type CreateEventInput struct {
	ScopeType        domain.ScopeType
	ScopeID          string
	ScopeDescription string
	ReasonCode       string
	Severity         domain.Severity
	Description      string
}

// EvidenceInput describes one evidence attachment.
type EvidenceInput struct {
	Type        domain.EvidenceType
	Description string
	FileRef     string
	ContentType string
	StepNumber  *int
}

// rollback aborts tx unless it was already committed.
func (s *StopWorkService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// commitTransition appends the audit entry, rewrites the blocked set when res
// is given, commits, and publishes the new blocked set.
func (s *StopWorkService) commitTransition(
	ctx context.Context,
	tx pgx.Tx,
	event *domain.Event,
	entry *domain.AuditEntry,
	res *Resolution,
) error {
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	if res != nil {
		if _, err := s.propagator.Apply(ctx, tx, event, *res); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	metrics.TransitionsTotal.WithLabelValues(string(entry.Action)).Inc()

	if res != nil {
		s.propagator.Publish(context.WithoutCancel(ctx), false)
	}
	return nil
}

// rejected records a refused transition. Authorization failures are logged.
func (s *StopWorkService) rejected(operation string, actor domain.Actor, err error) error {
	class := errorClass(err)
	metrics.RejectedTransitionsTotal.WithLabelValues(operation, class).Inc()
	if class == "authorization" {
		slog.Warn("transition refused",
			"operation", operation,
			"actor_id", actor.ID,
			"actor_role", actor.Role,
			"error", err,
		)
	}
	return err
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAuthorization):
		return "authorization"
	case errors.Is(err, domain.ErrSequence):
		return "sequence"
	case errors.Is(err, domain.ErrPrecondition):
		return "precondition"
	case errors.Is(err, domain.ErrTerminalState):
		return "terminal"
	default:
		return "other"
	}
}

// resolveFor looks up transitive jobs for an event that is still blocking.
func (s *StopWorkService) resolveFor(ctx context.Context, e *domain.Event) Resolution {
	if !e.IsBlocking() {
		return Resolution{}
	}
	return s.propagator.Resolve(ctx, e.ScopeType, e.ScopeID)
}

func (s *StopWorkService) validateCreate(in CreateEventInput) (*taxonomy.Reason, error) {
	if !in.ScopeType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScopeType, in.ScopeType)
	}
	if strings.TrimSpace(in.ScopeID) == "" {
		return nil, domain.ErrEmptyScopeID
	}
	if !in.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSeverity, in.Severity)
	}
	return s.catalog.Lookup(in.ReasonCode)
}

// CreateEvent registers a new stop-work event with the steps bound to its
// reason code and adds its scope to the blocked set.
func (s *StopWorkService) CreateEvent(ctx context.Context, in CreateEventInput, actor domain.Actor) (*domain.Event, error) {
	reason, err := s.validateCreate(in)
	if err != nil {
		return nil, s.rejected("create", actor, err)
	}

	res := s.propagator.Resolve(ctx, in.ScopeType, in.ScopeID)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	now := s.now()
	number, err := s.eventRepo.NextEventNumber(ctx, tx, now.Year())
	if err != nil {
		return nil, err
	}

	entry, err := domain.Initiation(&domain.Event{
		ID:               uuid.NewString(),
		EventNumber:      number,
		ScopeType:        in.ScopeType,
		ScopeID:          strings.TrimSpace(in.ScopeID),
		ScopeDescription: in.ScopeDescription,
		ReasonCode:       reason.Code,
		Severity:         in.Severity,
		Description:      in.Description,
		InitiatedBy:      actor.ID,
		InitiatedByRole:  actor.Role,
		InitiatedAt:      now,
	}, reason.Steps)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{}
	if err := event.Apply(entry); err != nil {
		return nil, fmt.Errorf("apply initiation: %w", err)
	}
	for i := range event.Steps {
		event.Steps[i].ID = uuid.NewString()
	}

	if err := s.eventRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.commitTransition(ctx, tx, event, entry, &res); err != nil {
		return nil, err
	}

	slog.Info("stop work initiated",
		"event_id", event.ID,
		"event_number", event.EventNumber,
		"scope_type", event.ScopeType,
		"scope_id", event.ScopeID,
		"reason_code", event.ReasonCode,
		"severity", event.Severity,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"jobs_blocked", len(res.Jobs),
	)

	return event, res.Err
}

// GetEvent returns one event with its steps and evidence.
func (s *StopWorkService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// GetActiveEvents returns every non-CLEARED event, newest first.
func (s *StopWorkService) GetActiveEvents(ctx context.Context) ([]*domain.Event, error) {
	return s.eventRepo.ListActive(ctx)
}

// ListEvents returns a filtered page of events. overdue keeps only active
// events past their SLA target.
func (s *StopWorkService) ListEvents(ctx context.Context, filters repository.EventListFilters, overdue bool) ([]*domain.Event, int, error) {
	if overdue {
		filters.OverdueCutoffs = s.sla.Cutoffs(s.now())
		if len(filters.OverdueCutoffs) == 0 {
			// No severity has a target, nothing can be overdue
			return nil, 0, nil
		}
	}
	return s.eventRepo.List(ctx, filters)
}

// OverdueEvents returns active events past their clearance target.
func (s *StopWorkService) OverdueEvents(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var overdue []*domain.Event
	for _, e := range events {
		if s.sla.IsOverdue(e, now) {
			overdue = append(overdue, e)
		}
	}
	return overdue, nil
}

// CompleteStep completes the current clearance step as actor.
func (s *StopWorkService) CompleteStep(
	ctx context.Context,
	eventID string,
	stepNumber int,
	actor domain.Actor,
	notes string,
) (*domain.Event, error) {
	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	res := s.resolveFor(ctx, current)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanCompleteStep(event, stepNumber, actor); err != nil {
		return nil, s.rejected("complete_step", actor, err)
	}

	entry := domain.StepCompletion(event, stepNumber, actor, notes, s.now())
	oldStatus := event.Status
	expectedRevision := event.Revision
	if err := event.Apply(entry); err != nil {
		return nil, fmt.Errorf("apply step completion: %w", err)
	}

	changed := []*domain.ClearanceStep{event.Step(stepNumber)}
	if next := event.CurrentStep(); next != nil {
		changed = append(changed, next)
	}
	if err := s.eventRepo.SaveSteps(ctx, tx, changed...); err != nil {
		return nil, err
	}

	if err := s.eventRepo.SaveState(ctx, tx, event, expectedRevision); err != nil {
		return nil, err
	}

	if err := s.commitTransition(ctx, tx, event, entry, &res); err != nil {
		return nil, err
	}

	slog.Info("clearance step completed",
		"event_id", event.ID,
		"event_number", event.EventNumber,
		"step_number", stepNumber,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"old_status", oldStatus,
		"new_status", event.Status,
	)

	return event, res.Err
}

// AddEvidence attaches an evidence reference to an event.
func (s *StopWorkService) AddEvidence(
	ctx context.Context,
	eventID string,
	in EvidenceInput,
	actor domain.Actor,
) (*domain.Event, error) {
	if err := validateEvidence(in); err != nil {
		return nil, s.rejected("add_evidence", actor, err)
	}
	if strings.TrimSpace(in.FileRef) == "" {
		return nil, s.rejected("add_evidence", actor, domain.ErrEmptyFileRef)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanAddEvidence(event, in.StepNumber); err != nil {
		return nil, s.rejected("add_evidence", actor, err)
	}

	evidence := domain.Evidence{
		ID:             uuid.NewString(),
		EventID:        event.ID,
		StepNumber:     in.StepNumber,
		Type:           in.Type,
		Description:    in.Description,
		FileRef:        in.FileRef,
		ContentType:    in.ContentType,
		UploadedBy:     actor.ID,
		UploadedByRole: actor.Role,
		UploadedAt:     s.now(),
	}

	entry, err := domain.EvidenceAddition(event, evidence)
	if err != nil {
		return nil, err
	}
	expectedRevision := event.Revision
	if err := event.Apply(entry); err != nil {
		return nil, fmt.Errorf("apply evidence: %w", err)
	}

	if err := s.eventRepo.AddEvidence(ctx, tx, &evidence); err != nil {
		return nil, err
	}

	if err := s.eventRepo.SaveState(ctx, tx, event, expectedRevision); err != nil {
		return nil, err
	}

	if err := s.commitTransition(ctx, tx, event, entry, nil); err != nil {
		return nil, err
	}

	slog.Info("evidence added",
		"event_id", event.ID,
		"event_number", event.EventNumber,
		"evidence_id", evidence.ID,
		"evidence_type", evidence.Type,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)

	return event, nil
}

// UploadEvidence stores a file in the evidence store and attaches it.
// The event is checked before the upload so refused requests leave no object behind.
func (s *StopWorkService) UploadEvidence(
	ctx context.Context,
	eventID string,
	in EvidenceInput,
	filename string,
	body io.Reader,
	size int64,
	actor domain.Actor,
) (*domain.Event, error) {
	if s.evidence == nil {
		return nil, fmt.Errorf("%w: evidence uploads are not configured, send a fileRef instead", domain.ErrValidation)
	}
	if err := validateEvidence(in); err != nil {
		return nil, s.rejected("add_evidence", actor, err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CanAddEvidence(event, in.StepNumber); err != nil {
		return nil, s.rejected("add_evidence", actor, err)
	}

	ref, err := s.evidence.Put(ctx, storage.EvidenceKey(event.ID, filename), in.ContentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("store evidence file: %w", err)
	}
	in.FileRef = ref

	return s.AddEvidence(ctx, eventID, in, actor)
}

func validateEvidence(in EvidenceInput) error {
	if !in.Type.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEvidenceType, in.Type)
	}
	return nil
}

// RequestApproval moves an event whose steps are all complete back to
// PENDING_APPROVAL, typically after a rejection.
func (s *StopWorkService) RequestApproval(ctx context.Context, eventID string, actor domain.Actor) (*domain.Event, error) {
	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	res := s.resolveFor(ctx, current)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanRequestApproval(event); err != nil {
		return nil, s.rejected("request_approval", actor, err)
	}

	entry := domain.ApprovalRequest(event, actor, s.now())
	oldStatus := event.Status
	expectedRevision := event.Revision
	if err := event.Apply(entry); err != nil {
		return nil, fmt.Errorf("apply approval request: %w", err)
	}

	if err := s.eventRepo.SaveState(ctx, tx, event, expectedRevision); err != nil {
		return nil, err
	}

	if err := s.commitTransition(ctx, tx, event, entry, &res); err != nil {
		return nil, err
	}

	slog.Info("clearance approval requested",
		"event_id", event.ID,
		"event_number", event.EventNumber,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"old_status", oldStatus,
		"new_status", event.Status,
	)

	return event, res.Err
}

// Decide records the approval gate decision. APPROVE clears the event and
// releases its resources; REJECT returns it to mitigation, or escalates it
// under the CRITICAL escalation policy. Step completions are never undone.
func (s *StopWorkService) Decide(
	ctx context.Context,
	eventID string,
	actor domain.Actor,
	decision domain.Decision,
	notes string,
) (*domain.Event, error) {
	if !decision.IsValid() {
		return nil, s.rejected("decide", actor, fmt.Errorf("%w: got %q", domain.ErrInvalidDecision, decision))
	}
	if decision == domain.DecisionReject && strings.TrimSpace(notes) == "" {
		return nil, s.rejected("decide", actor, fmt.Errorf("%w: a rejection must say what is missing", domain.ErrEmptyNotes))
	}

	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var res Resolution
	if decision == domain.DecisionReject {
		res = s.resolveFor(ctx, current)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanDecide(event, actor); err != nil {
		return nil, s.rejected("decide", actor, err)
	}

	now := s.now()
	var entry *domain.AuditEntry
	if decision == domain.DecisionApprove {
		entry = domain.Clearance(event, actor, notes, now)
	} else {
		entry = domain.Rejection(event, actor, notes, s.validator.ShouldEscalate(event), now)
	}

	oldStatus := event.Status
	expectedRevision := event.Revision
	if err := event.Apply(entry); err != nil {
		return nil, fmt.Errorf("apply decision: %w", err)
	}

	if err := s.eventRepo.SaveState(ctx, tx, event, expectedRevision); err != nil {
		return nil, err
	}

	if err := s.commitTransition(ctx, tx, event, entry, &res); err != nil {
		return nil, err
	}

	slog.Info("clearance decided",
		"event_id", event.ID,
		"event_number", event.EventNumber,
		"decision", decision,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"old_status", oldStatus,
		"new_status", event.Status,
		"rejection_count", event.RejectionCount,
	)

	return event, res.Err
}

// ListAuditTrail returns an event's audit entries in creation order.
// It reads only the trail, so it keeps working for events whose projection
// is gone.
func (s *StopWorkService) ListAuditTrail(ctx context.Context, eventID string) ([]*domain.AuditEntry, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
	}

	entries, err := s.auditRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
	}
	return entries, nil
}

// BlockedResources returns the committed blocked set.
func (s *StopWorkService) BlockedResources(ctx context.Context) (*domain.BlockedResourceView, error) {
	return s.propagator.Snapshot(ctx)
}

// VerifyEvent replays an event's audit trail and compares the result with
// the stored projection.
func (s *StopWorkService) VerifyEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	stored, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entries, err := s.auditRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	replayed, err := domain.Replay(entries)
	if err != nil {
		return stored, fmt.Errorf("%w: event %s: %v", domain.ErrProjectionMismatch, stored.EventNumber, err)
	}

	if err := domain.CompareProjection(stored, replayed); err != nil {
		return stored, fmt.Errorf("event %s: %w", stored.EventNumber, err)
	}
	return stored, nil
}

// VerifyResult is the outcome of verifying one event.
type VerifyResult struct {
	EventID     string
	EventNumber string
	Status      domain.EventStatus
	Entries     int64
	Err         error
}

// VerifyAll verifies every event. Per-event mismatches are reported in the
// results; the returned error is only for failures to read the store.
func (s *StopWorkService) VerifyAll(ctx context.Context) ([]VerifyResult, error) {
	ids, err := s.eventRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]VerifyResult, 0, len(ids))
	for _, id := range ids {
		event, err := s.VerifyEvent(ctx, id)
		if event == nil {
			return nil, err
		}
		results = append(results, VerifyResult{
			EventID:     event.ID,
			EventNumber: event.EventNumber,
			Status:      event.Status,
			Entries:     event.Revision,
			Err:         err,
		})
	}
	return results, nil
}

// Stats aggregates event counters for the period plus the current state.
type Stats struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Events      *repository.EventStatsResult
	Reasons     []repository.ReasonStatsResult
	Overdue     int
}

// Stats returns statistics for [since, now].
func (s *StopWorkService) Stats(ctx context.Context, since time.Time, scopeType *string) (*Stats, error) {
	filters := repository.StatsFilters{
		PeriodStart: since,
		PeriodEnd:   s.now(),
		ScopeType:   scopeType,
	}

	events, err := s.eventRepo.GetEventStats(ctx, filters)
	if err != nil {
		return nil, err
	}

	reasons, err := s.eventRepo.GetReasonStats(ctx, filters)
	if err != nil {
		return nil, err
	}

	overdueFilters := repository.EventListFilters{Limit: 1}
	if scopeType != nil {
		overdueFilters.ScopeType = scopeType
	}
	_, overdue, err := s.ListEvents(ctx, overdueFilters, true)
	if err != nil {
		return nil, err
	}

	return &Stats{
		PeriodStart: filters.PeriodStart,
		PeriodEnd:   filters.PeriodEnd,
		Events:      events,
		Reasons:     reasons,
		Overdue:     overdue,
	}, nil
}
