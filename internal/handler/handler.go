package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/stopwork/docs" // Import generated docs
	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/feed"
	"github.com/mtlprog/stopwork/internal/handler/dto"
	"github.com/mtlprog/stopwork/internal/jobassign"
	"github.com/mtlprog/stopwork/internal/middleware"
	"github.com/mtlprog/stopwork/internal/repository"
	"github.com/mtlprog/stopwork/internal/service"
	"github.com/mtlprog/stopwork/internal/static"
	"github.com/mtlprog/stopwork/internal/storage"
	"github.com/mtlprog/stopwork/internal/taxonomy"
)

// Options configures the collaborators behind the HTTP API.
// Zero values fall back to the package defaults.
type Options struct {
	JWTSecret        string
	JWTIssuer        string
	Resolver         jobassign.Resolver
	JobLookupTimeout time.Duration
	Catalog          *taxonomy.Catalog
	Approval         *config.ApprovalPolicy
	SLA              *config.SLA
	Publisher        feed.Publisher      // extra feed sink, e.g. Redis
	EvidenceStore    storage.ObjectStore // nil disables multipart uploads
	MaxEvidenceBytes int64
	CheckOrigin      func(r *http.Request) bool
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool             *pgxpool.Pool
	service          *service.StopWorkService
	propagator       *service.BlockPropagator
	hub              *feed.Hub
	authMiddleware   *middleware.AuthMiddleware
	maxEvidenceBytes int64
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, opts Options) *Handler {
	if opts.Resolver == nil {
		opts.Resolver = jobassign.NewStaticResolver()
	}
	if opts.JobLookupTimeout <= 0 {
		opts.JobLookupTimeout = config.DefaultJobLookupTimeout
	}
	if opts.Catalog == nil {
		opts.Catalog = taxonomy.Default()
	}
	approval := config.DefaultApprovalPolicy()
	if opts.Approval != nil {
		approval = *opts.Approval
	}
	sla := config.DefaultSLA()
	if opts.SLA != nil {
		sla = *opts.SLA
	}
	if opts.JWTIssuer == "" {
		opts.JWTIssuer = config.DefaultJWTIssuer
	}
	if opts.MaxEvidenceBytes <= 0 {
		opts.MaxEvidenceBytes = config.DefaultMaxEvidenceBytes
	}

	// Create repositories
	eventRepo := repository.NewEventRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	blockedRepo := repository.NewBlockedRepository(pool)

	// Create feed sinks
	hub := feed.NewHub(blockedRepo, opts.CheckOrigin)
	sinks := feed.NewFanout().Add("websocket", hub)
	if opts.Publisher != nil {
		sinks.Add("redis", opts.Publisher)
	}

	// Create services
	propagator := service.NewBlockPropagator(opts.Resolver, blockedRepo, opts.JobLookupTimeout, sinks)
	stopWorkService := service.NewStopWorkService(
		pool,
		eventRepo,
		auditRepo,
		propagator,
		opts.Catalog,
		approval,
		service.NewSLA(sla),
	)
	if opts.EvidenceStore != nil {
		stopWorkService.SetEvidenceStore(opts.EvidenceStore)
	}

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(opts.JWTSecret, opts.JWTIssuer)

	return &Handler{
		pool:             pool,
		service:          stopWorkService,
		propagator:       propagator,
		hub:              hub,
		authMiddleware:   authMiddleware,
		maxEvidenceBytes: opts.MaxEvidenceBytes,
	}
}

// Service returns the stop-work service behind the API.
func (h *Handler) Service() *service.StopWorkService {
	return h.service
}

// Propagator returns the blocked set propagator, for the resend loop.
func (h *Handler) Propagator() *service.BlockPropagator {
	return h.propagator
}

// Auth returns the token middleware.
func (h *Handler) Auth() *middleware.AuthMiddleware {
	return h.authMiddleware
}

// Close disconnects feed subscribers.
func (h *Handler) Close() {
	h.hub.Close()
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Integration guide for dispatch systems
	mux.HandleFunc("GET /dispatch.md", h.handleDispatchMd)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Stop-work routes with authentication
	mux.Handle("POST /stop-work", h.authenticated(h.handleCreateEvent))
	mux.Handle("GET /stop-work", h.authenticated(h.handleListEvents))
	mux.Handle("GET /stop-work/active", h.authenticated(h.handleGetActiveEvents))
	mux.Handle("GET /stop-work/reason-codes", h.authenticated(h.handleListReasonCodes))
	mux.Handle("GET /stop-work/stats", h.authenticated(h.handleGetStats))
	mux.Handle("GET /stop-work/blocked-resources", h.authenticated(h.handleBlockedResources))
	mux.Handle("GET /stop-work/feed", h.authMiddleware.Authenticate(h.hub))
	mux.Handle("GET /stop-work/{id}", h.authenticated(h.handleGetEvent))
	mux.Handle("POST /stop-work/{id}/steps/{n}/complete", h.authenticated(h.handleCompleteStep))
	mux.Handle("POST /stop-work/{id}/evidence", h.authenticated(h.handleAddEvidence))
	mux.Handle("POST /stop-work/{id}/request-approval", h.authenticated(h.handleRequestApproval))
	mux.Handle("POST /stop-work/{id}/clearance", h.authenticated(h.handleClearance))
	mux.Handle("GET /stop-work/{id}/audit", h.authenticated(h.handleGetAuditTrail))
	mux.Handle("GET /stop-work/{id}/report.pdf", h.authenticated(h.handleGetReport))
}

func (h *Handler) authenticated(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleDispatchMd serves the embedded dispatch integration guide.
func (h *Handler) handleDispatchMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.DispatchMd))
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err through dto.MapDomainError.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// respondEvent answers a mutation. A job lookup failure after a committed
// transition keeps the success status and is reported as a warning.
func (h *Handler) respondEvent(w http.ResponseWriter, status int, event *domain.Event, err error) {
	var warnings []string
	if err != nil {
		if event == nil || !errors.Is(err, domain.ErrJobResolution) {
			respondDomainError(w, err)
			return
		}
		warnings = append(warnings, err.Error())
		w.Header().Set("X-Block-Propagation", "degraded")
	}

	response := dto.ToEventResponse(event, h.service.SLA().IsOverdue(event, h.service.Now()))
	response.Warnings = warnings
	respondJSON(w, status, response)
}

// extractEventID extracts the event ID from the path. Malformed ids are
// answered like unknown ones.
// Returns (eventID, true) if valid, ("", false) if invalid (error already sent to client).
func extractEventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("id")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "event id is required")
		return "", false
	}

	if _, err := uuid.Parse(eventID); err != nil {
		respondError(w, http.StatusNotFound, "EVENT_NOT_FOUND", "stop-work event not found: "+eventID)
		return "", false
	}

	return eventID, true
}

// actorFromRequest returns the authenticated actor or answers 401.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return domain.Actor{}, false
	}
	return actor, true
}
