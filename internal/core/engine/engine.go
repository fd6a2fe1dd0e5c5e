package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yousync/yousync/internal/core/store"
)

// Project is a resolved destination project.
type Project struct {
	ID   string
	Name string
}

// SourceReader lists the complete current issue set of a repository. The
// result must be fully materialized (pagination handled internally, pull
// requests excluded); the engine diffs against complete sets only.
type SourceReader interface {
	ListIssues(ctx context.Context, owner, repo string) ([]SourceIssue, error)
}

// DestinationWriter creates and updates destination issues. It is the only
// component that mutates the destination tracker.
type DestinationWriter interface {
	// CreateIssue creates a destination issue and returns its identifier.
	CreateIssue(ctx context.Context, projectID string, fields DestinationFields) (string, error)

	// UpdateIssue applies only the changed fields to an existing issue.
	UpdateIssue(ctx context.Context, issueID string, delta Delta) error
}

// ProjectResolver finds destination projects matching a search query, best
// match first.
type ProjectResolver interface {
	FindProject(ctx context.Context, query string) ([]Project, error)
}

// StoreOpener opens the correspondence store scoped to a resolved project.
// The engine can only open the store once it knows which project it is
// syncing into.
type StoreOpener func(projectID string) (store.Store, error)

// Event reports engine progress for display layers.
type Event struct {
	Phase   string // "resolve", "fetch", "sync"
	Status  string // "started", "success", "error", "progress"
	Message string
}

// Engine performs one synchronization run: resolve the destination project,
// read the full source issue set, and create or update destination issues so
// every source issue is represented and caught up to its last-read state.
type Engine struct {
	reader    SourceReader
	writer    DestinationWriter
	resolver  ProjectResolver
	openStore StoreOpener
	workers   int

	events  chan<- Event
	verbose bool
	now     func() time.Time
}

// New creates an engine. workers bounds how many issues are processed in
// parallel; values below 1 mean sequential.
func New(reader SourceReader, writer DestinationWriter, resolver ProjectResolver, open StoreOpener, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		reader:    reader,
		writer:    writer,
		resolver:  resolver,
		openStore: open,
		workers:   workers,
		now:       time.Now,
	}
}

// WithEvents directs progress events to ch. Sends never block; a slow
// consumer just misses events.
func (e *Engine) WithEvents(ch chan<- Event) *Engine {
	e.events = ch
	return e
}

// WithVerbose enables per-issue log output.
func (e *Engine) WithVerbose(v bool) *Engine {
	e.verbose = v
	return e
}

func (e *Engine) emit(phase, status, message string) {
	if e.events == nil {
		return
	}
	select {
	case e.events <- Event{Phase: phase, Status: status, Message: message}:
	default:
	}
}

// Run executes one synchronization pass. It returns an error only for fatal
// conditions (project resolution, source listing, store open); per-issue
// failures are isolated and reported in the Report instead.
func (e *Engine) Run(ctx context.Context, owner, repo, query string) (*Report, error) {
	report := NewReport(owner, repo)

	e.emit("resolve", "started", query)
	projects, err := e.resolver.FindProject(ctx, query)
	if err != nil {
		e.emit("resolve", "error", err.Error())
		return nil, fmt.Errorf("resolving project %q: %w", query, err)
	}
	if len(projects) == 0 {
		e.emit("resolve", "error", "no matches")
		return nil, fmt.Errorf("no project matches %q", query)
	}
	// Multiple matches: the destination's own ranking decides, first wins.
	project := projects[0]
	report.Project = project
	e.emit("resolve", "success", project.Name)
	if e.verbose {
		log.Printf("[engine] project resolved: %s (%s)", project.Name, project.ID)
	}

	st, err := e.openStore(project.ID)
	if err != nil {
		return nil, fmt.Errorf("opening correspondence store: %w", err)
	}
	defer st.Close()

	e.emit("fetch", "started", fmt.Sprintf("%s/%s", owner, repo))
	issues, err := e.reader.ListIssues(ctx, owner, repo)
	if err != nil {
		e.emit("fetch", "error", err.Error())
		return nil, fmt.Errorf("listing issues for %s/%s: %w", owner, repo, err)
	}
	e.emit("fetch", "success", fmt.Sprintf("%d issues", len(issues)))
	if e.verbose {
		log.Printf("[engine] fetched %d issues from %s/%s", len(issues), owner, repo)
	}

	e.emit("sync", "started", "")
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	// Single-pass iteration: no source ID is visited twice within a run, so
	// concurrent operations never target the same correspondence record.
	for _, issue := range issues {
		issue := issue
		g.Go(func() error {
			outcome, err := e.syncIssue(gctx, st, project.ID, issue)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.record(OutcomeFailed)
				report.Failures = append(report.Failures, Failure{
					SourceID: issue.ID,
					Number:   issue.Number,
					Title:    issue.Title,
					Err:      err,
				})
				e.emit("sync", "progress", fmt.Sprintf("#%d failed: %v", issue.Number, err))
				log.Printf("[engine] #%d failed: %v", issue.Number, err)
				return nil
			}
			report.record(outcome)
			if outcome != OutcomeUnchanged || e.verbose {
				e.emit("sync", "progress", fmt.Sprintf("#%d %s", issue.Number, outcome))
			}
			if e.verbose {
				log.Printf("[engine] #%d %s", issue.Number, outcome)
			}
			return nil
		})
	}
	// Workers never return errors; failures land in the report.
	_ = g.Wait()

	report.Duration = e.now().Sub(report.StartedAt)
	if report.Clean() {
		e.emit("sync", "success", fmt.Sprintf("%d issues", report.Total()))
	} else {
		e.emit("sync", "error", fmt.Sprintf("%d of %d issues failed", report.Failed, report.Total()))
	}
	return report, nil
}

// syncIssue brings one destination issue in line with its source issue. The
// correspondence record is written only after the destination call succeeds,
// and the issue counts as done only after that write succeeds.
func (e *Engine) syncIssue(ctx context.Context, st store.Store, projectID string, issue SourceIssue) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeFailed, err
	}

	rec, ok, err := st.Get(issue.ID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("reading correspondence: %w", err)
	}

	if !ok {
		destID, err := e.writer.CreateIssue(ctx, projectID, MapFields(issue))
		if err != nil {
			return OutcomeFailed, fmt.Errorf("creating destination issue: %w", err)
		}
		rec := store.Record{
			SourceID:      issue.ID,
			DestinationID: destID,
			Snapshot:      NewSnapshot(issue),
			SyncedAt:      e.now(),
		}
		if err := st.Put(rec); err != nil {
			return OutcomeFailed, fmt.Errorf("recording correspondence for %s (destination may be ahead of recorded state): %w", destID, err)
		}
		return OutcomeCreated, nil
	}

	delta := Detect(rec.Snapshot, issue)
	if delta.Empty() {
		return OutcomeUnchanged, nil
	}

	if err := e.writer.UpdateIssue(ctx, rec.DestinationID, delta); err != nil {
		return OutcomeFailed, fmt.Errorf("updating destination issue %s: %w", rec.DestinationID, err)
	}
	rec.Snapshot = NewSnapshot(issue)
	rec.SyncedAt = e.now()
	if err := st.Put(rec); err != nil {
		return OutcomeFailed, fmt.Errorf("recording snapshot for %s (destination may be ahead of recorded state): %w", rec.DestinationID, err)
	}
	return OutcomeUpdated, nil
}
