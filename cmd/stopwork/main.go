// @title			Stop-Work Authority API
// @version		1.0
// @description	Stop-work event lifecycle, clearance workflow and blocked-resource feed for plant dispatch.
// @BasePath		/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/database"
	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/feed"
	"github.com/mtlprog/stopwork/internal/handler"
	"github.com/mtlprog/stopwork/internal/jobassign"
	"github.com/mtlprog/stopwork/internal/logger"
	"github.com/mtlprog/stopwork/internal/middleware"
	"github.com/mtlprog/stopwork/internal/storage"
	"github.com/mtlprog/stopwork/internal/taxonomy"
)

func main() {
	app := &cli.App{
		Name:  "stopwork",
		Usage: "Stop-work authority: event lifecycle, clearance and blocked resources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL, overrides database.url",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"STOPWORK_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), logger.ParseFormat(c.String("log-format")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP server port, overrides server.port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: runMigrate,
			},
			{
				Name:   "active",
				Usage:  "List active stop-work events",
				Action: runActive,
			},
			{
				Name:   "blocked",
				Usage:  "Print the blocked resource set",
				Action: runBlocked,
			},
			{
				Name:   "check-overdue",
				Usage:  "List active events past their clearance target",
				Action: runCheckOverdue,
			},
			{
				Name:   "verify-audit",
				Usage:  "Replay every audit trail and compare it with the stored events",
				Action: runVerifyAudit,
			},
			{
				Name:  "issue-token",
				Usage: "Sign an identity token for testing and integrations",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Actor id", Required: true},
					&cli.StringFlag{Name: "role", Usage: "Actor role, e.g. OPERATOR", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour, Usage: "Token lifetime"},
				},
				Action: runIssueToken,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// deps bundles what every command needs.
type deps struct {
	cfg     *config.Config
	db      *database.DB
	handler *handler.Handler
	closers []func()
}

func (a *deps) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup loads configuration, connects to the database, applies migrations
// and builds the handler with its collaborators.
func setup(c *cli.Context) (*deps, error) {
	ctx := c.Context

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if url := c.String("database-url"); url != "" {
		cfg.Database.URL = url
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database url is required (--database-url or database.url)")
	}

	db, err := database.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a := &deps{cfg: cfg, db: db, closers: []func(){db.Close}}

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	opts, err := buildOptions(ctx, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.handler = handler.New(db.Pool(), opts)
	a.closers = append(a.closers, a.handler.Close)
	return a, nil
}

func buildOptions(ctx context.Context, a *deps) (handler.Options, error) {
	cfg := a.cfg
	opts := handler.Options{
		JWTSecret:        cfg.Auth.JWTSecret,
		JWTIssuer:        cfg.Auth.Issuer,
		JobLookupTimeout: cfg.JobAssignment.Timeout,
		Approval:         &cfg.Approval,
		SLA:              &cfg.SLA,
		MaxEvidenceBytes: cfg.Evidence.MaxBytes,
	}

	if cfg.Taxonomy.File != "" {
		catalog, err := taxonomy.FromFile(cfg.Taxonomy.File)
		if err != nil {
			return opts, fmt.Errorf("failed to load taxonomy: %w", err)
		}
		opts.Catalog = catalog
	}

	switch {
	case cfg.JobAssignment.BaseURL != "":
		opts.Resolver = jobassign.NewHTTPResolver(cfg.JobAssignment.BaseURL, cfg.JobAssignment.Timeout)
	case cfg.JobAssignment.AssignmentsFile != "":
		resolver, err := jobassign.LoadStaticFile(cfg.JobAssignment.AssignmentsFile)
		if err != nil {
			return opts, fmt.Errorf("failed to load job assignments: %w", err)
		}
		opts.Resolver = resolver
	default:
		slog.Warn("no job assignment source configured, work-center events will not block jobs")
	}

	if cfg.Redis.Addr != "" {
		publisher := feed.ConnectRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Channel)
		a.closers = append(a.closers, func() { _ = publisher.Close() })
		opts.Publisher = publisher
	}

	if cfg.Evidence.Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.Evidence.Bucket,
			Region:    cfg.Evidence.Region,
			Endpoint:  cfg.Evidence.Endpoint,
			AccessKey: cfg.Evidence.AccessKey,
			SecretKey: cfg.Evidence.SecretKey,
		})
		if err != nil {
			return opts, fmt.Errorf("failed to create evidence store: %w", err)
		}
		opts.EvidenceStore = store
	}

	return opts, nil
}

func runServe(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required to serve")
	}

	port := c.String("port")
	if port == "" {
		port = a.cfg.Server.Port
	}

	mux := http.NewServeMux()
	a.handler.RegisterRoutes(mux)

	var root http.Handler = mux
	root = middleware.Metrics(root)
	root = middleware.NewCORS(a.cfg.Server.CorsAllowedOrigins)(root)
	root = middleware.Recovery(root)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Periodic resend of the blocked set to feed subscribers
	feedCtx, stopFeed := context.WithCancel(c.Context)
	defer stopFeed()
	go a.handler.Propagator().Run(feedCtx, a.cfg.Server.FeedResendInterval)

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	stopFeed()

	shutdownCtx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runMigrate(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("migrations applied")
	return nil
}

func runActive(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := a.handler.Service()
	events, err := svc.GetActiveEvents(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list active events: %w", err)
	}

	printEvents(events, svc.Now(), func(e *domain.Event) bool { return svc.SLA().IsOverdue(e, svc.Now()) })
	return nil
}

func runCheckOverdue(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := a.handler.Service()
	events, err := svc.OverdueEvents(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list overdue events: %w", err)
	}

	for _, e := range events {
		slog.Warn("stop-work event overdue",
			"event_number", e.EventNumber,
			"severity", e.Severity,
			"status", e.Status,
			"deadline", svc.SLA().Deadline(e),
		)
	}
	printEvents(events, svc.Now(), func(*domain.Event) bool { return true })
	slog.Info("overdue check complete", "overdue_count", len(events))
	return nil
}

func printEvents(events []*domain.Event, now time.Time, overdue func(*domain.Event) bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Number", "Scope", "Reason", "Severity", "Status", "Step", "Age", "Overdue"})
	for _, e := range events {
		step := "-"
		if s := e.CurrentStep(); s != nil {
			step = fmt.Sprintf("%d/%d %s", s.StepNumber, len(e.Steps), s.RequiredRole)
		}
		flag := ""
		if overdue(e) {
			flag = "yes"
		}
		tw.AppendRow(table.Row{
			e.EventNumber,
			fmt.Sprintf("%s %s", e.ScopeType, e.ScopeID),
			e.ReasonCode,
			e.Severity,
			e.Status,
			step,
			now.Sub(e.InitiatedAt).Truncate(time.Minute),
			flag,
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(events)})
	tw.Render()
}

var scopeOrder = []domain.ScopeType{
	domain.ScopeTypeWorkCenter,
	domain.ScopeTypeAsset,
	domain.ScopeTypeJob,
	domain.ScopeTypeArea,
	domain.ScopeTypeLocation,
	domain.ScopeTypeOperation,
}

func runBlocked(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := a.handler.Service().BlockedResources(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load blocked resources: %w", err)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Blocked resources, revision %d", view.Revision)
	tw.AppendHeader(table.Row{"Kind", "Resource", "Blocked by", "Reason"})
	for _, kind := range scopeOrder {
		for _, item := range view.Resources[kind] {
			numbers := make([]string, len(item.BlockedBy))
			reasons := make([]string, len(item.BlockedBy))
			for i, b := range item.BlockedBy {
				numbers[i] = fmt.Sprintf("%s (%s)", b.EventNumber, b.Severity)
				reasons[i] = string(b.Reason)
			}
			tw.AppendRow(table.Row{kind, item.ResourceID, strings.Join(numbers, ", "), strings.Join(reasons, ", ")})
		}
	}
	tw.Render()
	return nil
}

func runVerifyAudit(c *cli.Context) error {
	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.handler.Service().VerifyAll(c.Context)
	if err != nil {
		return fmt.Errorf("failed to verify audit trails: %w", err)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Number", "Status", "Entries", "Result"})
	failed := 0
	for _, r := range results {
		result := "ok"
		if r.Err != nil {
			failed++
			result = r.Err.Error()
			slog.Error("audit trail does not match event", "event_number", r.EventNumber, "error", r.Err)
		}
		tw.AppendRow(table.Row{r.EventNumber, r.Status, r.Entries, result})
	}
	tw.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d events failed verification", failed, len(results))
	}
	slog.Info("audit trails verified", "events", len(results))
	return nil
}

func runIssueToken(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required to sign tokens")
	}

	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	token, err := auth.IssueToken(domain.Actor{
		ID:   c.String("id"),
		Name: c.String("name"),
		Role: domain.Role(strings.ToUpper(c.String("role"))),
	}, c.Duration("ttl"))
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
