package engine

import (
	"github.com/yousync/yousync/internal/core/store"
)

// Delta holds the destination fields that drifted since the last sync. Nil
// pointers and empty tag slices mean "unchanged"; an empty Delta means no
// adapter call is issued at all.
//
// Tags are expressed as a set difference against the snapshot's labels rather
// than a full replacement: the engine only ever removes tags it introduced
// itself, so tags added manually in the destination survive updates.
type Delta struct {
	Summary     *string
	Description *string
	State       *string
	AddTags     []string
	RemoveTags  []string
}

// Empty reports whether no field changed.
func (d Delta) Empty() bool {
	return d.Summary == nil &&
		d.Description == nil &&
		d.State == nil &&
		len(d.AddTags) == 0 &&
		len(d.RemoveTags) == 0
}

// Detect compares a fresh source issue against its last-synced snapshot and
// returns the fields that need updating, in destination semantics. It is a
// pure function: comparison is exact-value, field by field, with label sets
// compared order-insensitively.
func Detect(snap store.Snapshot, issue SourceIssue) Delta {
	var d Delta

	if issue.Title != snap.Summary {
		d.Summary = &issue.Title
	}
	if issue.Body != snap.Description {
		d.Description = &issue.Body
	}
	if state := StateName(issue.State, issue.StateReason); state != snap.State {
		d.State = &state
	}

	current := sortedSet(issue.Labels)
	previous := sortedSet(snap.Labels)
	d.AddTags = subtract(current, previous)
	d.RemoveTags = subtract(previous, current)

	return d
}

// subtract returns the elements of a not present in b. Inputs are sorted
// duplicate-free sets; the result preserves order.
func subtract(a, b []string) []string {
	if len(a) == 0 {
		return nil
	}
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
