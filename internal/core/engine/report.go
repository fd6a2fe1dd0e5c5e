package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome classifies what happened to one source issue during a run.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Failure records why a single issue could not be synchronized. Other issues
// in the same run are unaffected.
type Failure struct {
	SourceID int64
	Number   int
	Title    string
	Err      error
}

// Report is the outcome of one complete run over the source issue set.
type Report struct {
	RunID     string
	Owner     string
	Repo      string
	Project   Project
	StartedAt time.Time
	Duration  time.Duration

	Created   int
	Updated   int
	Unchanged int
	Failed    int
	Failures  []Failure
}

// NewReport starts a report for a run, stamping it with a fresh run ID.
func NewReport(owner, repo string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Owner:     owner,
		Repo:      repo,
		StartedAt: time.Now(),
	}
}

// Clean reports whether every issue synchronized successfully.
func (r *Report) Clean() bool {
	return r.Failed == 0
}

// Total returns the number of source issues visited.
func (r *Report) Total() int {
	return r.Created + r.Updated + r.Unchanged + r.Failed
}

// record tallies one issue outcome. Callers serialize access.
func (r *Report) record(outcome Outcome) {
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeFailed:
		r.Failed++
	}
}

// Summary renders the operator-facing report.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Synced %s/%s -> %s (%s)\n", r.Owner, r.Repo, r.Project.Name, r.Project.ID)
	fmt.Fprintf(&sb, "  run %s, %d issues in %s\n", r.RunID, r.Total(), r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "  created %d, updated %d, unchanged %d, failed %d\n",
		r.Created, r.Updated, r.Unchanged, r.Failed)

	if len(r.Failures) > 0 {
		failures := make([]Failure, len(r.Failures))
		copy(failures, r.Failures)
		sort.Slice(failures, func(i, j int) bool { return failures[i].Number < failures[j].Number })

		sb.WriteString("Failures:\n")
		for _, f := range failures {
			fmt.Fprintf(&sb, "  #%d %q: %v\n", f.Number, f.Title, f.Err)
		}
	}
	return sb.String()
}
