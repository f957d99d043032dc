// Package feed pushes blocked-resource snapshots to dispatch systems.
// Delivery is at-least-once: every message is a full snapshot carrying its
// revision, so consumers drop anything not newer than what they hold.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mtlprog/stopwork/internal/domain"
	"github.com/mtlprog/stopwork/internal/handler/dto"
	"github.com/mtlprog/stopwork/internal/metrics"
)

// Publisher delivers a blocked set snapshot to one sink.
type Publisher interface {
	Publish(ctx context.Context, view *domain.BlockedResourceView) error
}

// Encode renders a snapshot as it travels on every sink.
func Encode(view *domain.BlockedResourceView) ([]byte, error) {
	data, err := json.Marshal(dto.ToBlockedResourcesResponse(view))
	if err != nil {
		return nil, fmt.Errorf("encode blocked set snapshot: %w", err)
	}
	return data, nil
}

// Fanout publishes to several named sinks. A failing sink is logged and
// counted; the others still receive the snapshot.
type Fanout struct {
	names []string
	sinks []Publisher
}

// NewFanout creates an empty Fanout.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a sink under name.
func (f *Fanout) Add(name string, p Publisher) *Fanout {
	f.names = append(f.names, name)
	f.sinks = append(f.sinks, p)
	return f
}

// Publish implements Publisher. It never returns an error.
func (f *Fanout) Publish(ctx context.Context, view *domain.BlockedResourceView) error {
	for i, sink := range f.sinks {
		if err := sink.Publish(ctx, view); err != nil {
			metrics.FeedPublishFailures.WithLabelValues(f.names[i]).Inc()
			slog.Warn("blocked set publication failed",
				"sink", f.names[i],
				"revision", view.Revision,
				"error", err,
			)
		}
	}
	return nil
}
