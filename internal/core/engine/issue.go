// Package engine implements the synchronization core: the field mapping
// policy from GitHub issues onto YouTrack issues, the change detector that
// diffs a fresh source issue against its last-synced snapshot, and the engine
// that drives creation and updates through the destination adapter.
package engine

import (
	"sort"
	"time"

	"github.com/yousync/yousync/internal/core/store"
)

// SourceIssue is one issue as read from GitHub. Read-only input; the engine
// never writes back to the source tracker.
type SourceIssue struct {
	ID          int64
	Number      int
	Title       string
	Body        string
	State       string // "open" or "closed"
	StateReason string // "completed", "not_planned", "duplicate" or empty
	Labels      []string
	UpdatedAt   time.Time
}

// DestinationFields is the full field set sent when creating a destination
// issue.
type DestinationFields struct {
	Summary     string
	Description string
	State       string
	Tags        []string
}

// closedStateNames maps a GitHub close reason onto the YouTrack state bundle
// element applied to the destination issue.
var closedStateNames = map[string]string{
	"completed":   "Fixed",
	"not_planned": "Won't fix",
	"duplicate":   "Duplicate",
}

// StateName returns the destination state for a source state/reason pair.
func StateName(state, reason string) string {
	if state != "closed" {
		return "Open"
	}
	if name, ok := closedStateNames[reason]; ok {
		return name
	}
	return "Fixed"
}

// Resolved reports whether a destination state marks the issue resolved.
func Resolved(stateName string) bool {
	return stateName != "Open"
}

// MapFields applies the mapping policy to a source issue: title to summary
// and body to description verbatim, state to the destination state name, and
// labels to tags.
func MapFields(issue SourceIssue) DestinationFields {
	return DestinationFields{
		Summary:     issue.Title,
		Description: issue.Body,
		State:       StateName(issue.State, issue.StateReason),
		Tags:        sortedSet(issue.Labels),
	}
}

// NewSnapshot captures the diff baseline for an issue: the mapped destination
// fields exactly as this run sends them.
func NewSnapshot(issue SourceIssue) store.Snapshot {
	return store.Snapshot{
		Summary:     issue.Title,
		Description: issue.Body,
		State:       StateName(issue.State, issue.StateReason),
		Labels:      sortedSet(issue.Labels),
	}
}

// sortedSet returns a sorted copy of labels with duplicates removed.
func sortedSet(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
