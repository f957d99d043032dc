package service

import (
	"time"

	"github.com/mtlprog/stopwork/internal/config"
	"github.com/mtlprog/stopwork/internal/domain"
)

// SLA holds the clearance target for each severity.
type SLA struct {
	targets map[domain.Severity]time.Duration
}

// NewSLA builds an SLA from configuration. Zero targets disable the check
// for that severity.
func NewSLA(cfg config.SLA) SLA {
	return SLA{targets: map[domain.Severity]time.Duration{
		domain.SeverityCritical: cfg.Critical,
		domain.SeverityHigh:     cfg.High,
		domain.SeverityMedium:   cfg.Medium,
		domain.SeverityLow:      cfg.Low,
	}}
}

// Target returns the clearance target for a severity, or 0 if none.
func (s SLA) Target(severity domain.Severity) time.Duration {
	return s.targets[severity]
}

// Deadline calculates when the event should be cleared by.
// Returns nil for cleared events and severities without a target.
func (s SLA) Deadline(e *domain.Event) *time.Time {
	if !e.IsBlocking() {
		return nil
	}

	target := s.Target(e.Severity)
	if target == 0 {
		// No target configured for this severity
		return nil
	}

	deadline := e.InitiatedAt.Add(target)
	return &deadline
}

// IsOverdue reports whether an active event has passed its clearance target.
func (s SLA) IsOverdue(e *domain.Event, now time.Time) bool {
	deadline := s.Deadline(e)
	return deadline != nil && now.After(*deadline)
}

// Cutoffs returns, per severity, the initiation time before which an active
// event is overdue at now.
func (s SLA) Cutoffs(now time.Time) map[domain.Severity]time.Time {
	cutoffs := make(map[domain.Severity]time.Time, len(s.targets))
	for severity, target := range s.targets {
		if target > 0 {
			cutoffs[severity] = now.Add(-target)
		}
	}
	return cutoffs
}
