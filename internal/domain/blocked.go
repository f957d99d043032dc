package domain

import (
	"sort"
	"time"
)

// BlockReason explains why a resource is excluded from dispatch.
type BlockReason string

const (
	// BlockReasonStopWork marks the event's own scope.
	BlockReasonStopWork BlockReason = "STOP_WORK_ACTIVE"
	// BlockReasonWorkCenterBlocked marks jobs scheduled on a blocked work center or asset.
	BlockReasonWorkCenterBlocked BlockReason = "WORK_CENTER_BLOCKED"
)

// BlockedResource is one row of the materialized blocked set.
type BlockedResource struct {
	Kind        ScopeType
	ResourceID  string
	EventID     string
	EventNumber string
	Severity    Severity
	Reason      BlockReason
}

// BlockContribution returns the rows an event adds to the blocked set.
// jobs are the job ids the job-assignment collaborator resolved for the scope.
func BlockContribution(e *Event, jobs []string) []BlockedResource {
	if !e.IsBlocking() {
		return nil
	}

	rows := []BlockedResource{{
		Kind:        e.ScopeType,
		ResourceID:  e.ScopeID,
		EventID:     e.ID,
		EventNumber: e.EventNumber,
		Severity:    e.Severity,
		Reason:      BlockReasonStopWork,
	}}
	if !e.ScopeType.PropagatesToJobs() {
		return rows
	}

	seen := map[string]bool{}
	for _, job := range jobs {
		if job == "" || seen[job] {
			continue
		}
		seen[job] = true
		rows = append(rows, BlockedResource{
			Kind:        ScopeTypeJob,
			ResourceID:  job,
			EventID:     e.ID,
			EventNumber: e.EventNumber,
			Severity:    e.Severity,
			Reason:      BlockReasonWorkCenterBlocked,
		})
	}
	return rows
}

// BlockingEvent is one reason a resource is blocked.
type BlockingEvent struct {
	EventID     string
	EventNumber string
	Severity    Severity
	Reason      BlockReason
}

// BlockedItem is a resource together with every event blocking it.
type BlockedItem struct {
	ResourceID string
	BlockedBy  []BlockingEvent
}

// BlockedResourceView is the derived blocked set consulted by dispatch.
// Revision increases with every transition that recomputed the set.
type BlockedResourceView struct {
	Revision    int64
	GeneratedAt time.Time
	Resources   map[ScopeType][]BlockedItem
}

// BuildBlockedView groups blocked rows by kind and resource.
// Items are sorted by resource id and blocking events by event number.
func BuildBlockedView(revision int64, generatedAt time.Time, rows []BlockedResource) *BlockedResourceView {
	byKey := map[ScopeType]map[string]*BlockedItem{}
	for _, r := range rows {
		items, ok := byKey[r.Kind]
		if !ok {
			items = map[string]*BlockedItem{}
			byKey[r.Kind] = items
		}
		item, ok := items[r.ResourceID]
		if !ok {
			item = &BlockedItem{ResourceID: r.ResourceID}
			items[r.ResourceID] = item
		}
		item.BlockedBy = append(item.BlockedBy, BlockingEvent{
			EventID:     r.EventID,
			EventNumber: r.EventNumber,
			Severity:    r.Severity,
			Reason:      r.Reason,
		})
	}

	view := &BlockedResourceView{
		Revision:    revision,
		GeneratedAt: generatedAt,
		Resources:   make(map[ScopeType][]BlockedItem, len(byKey)),
	}
	for kind, items := range byKey {
		list := make([]BlockedItem, 0, len(items))
		for _, item := range items {
			sort.Slice(item.BlockedBy, func(i, j int) bool {
				return item.BlockedBy[i].EventNumber < item.BlockedBy[j].EventNumber
			})
			list = append(list, *item)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ResourceID < list[j].ResourceID })
		view.Resources[kind] = list
	}
	return view
}

// Lookup returns the events blocking a resource, or nil when it is free.
func (v *BlockedResourceView) Lookup(kind ScopeType, resourceID string) []BlockingEvent {
	for _, item := range v.Resources[kind] {
		if item.ResourceID == resourceID {
			return item.BlockedBy
		}
	}
	return nil
}

// IsBlocked reports whether dispatch must hold the resource.
func (v *BlockedResourceView) IsBlocked(kind ScopeType, resourceID string) bool {
	return len(v.Lookup(kind, resourceID)) > 0
}

// Count returns the number of distinct blocked resources across all kinds.
func (v *BlockedResourceView) Count() int {
	n := 0
	for _, items := range v.Resources {
		n += len(items)
	}
	return n
}

// EventCount returns the number of distinct events contributing to the view.
func (v *BlockedResourceView) EventCount() int {
	seen := map[string]struct{}{}
	for _, items := range v.Resources {
		for _, item := range items {
			for _, b := range item.BlockedBy {
				seen[b.EventID] = struct{}{}
			}
		}
	}
	return len(seen)
}
