// Package store persists the correspondence between source and destination
// issues. It is the single authority for which YouTrack issue a GitHub issue
// maps to, together with the field snapshot taken at the last successful sync.
package store

import (
	"errors"
	"time"
)

// Snapshot holds the synchronized fields as they stood at the last successful
// sync. Fields are kept in destination semantics: Summary/Description are the
// values sent to YouTrack and State is the state bundle element name.
type Snapshot struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	State       string   `json:"state"`
	Labels      []string `json:"labels,omitempty"`
}

// Record maps one source issue to its destination issue.
type Record struct {
	SourceID      int64     `json:"source_id"`
	DestinationID string    `json:"destination_id"`
	Snapshot      Snapshot  `json:"snapshot"`
	SyncedAt      time.Time `json:"synced_at"`
}

// ErrDestinationClaimed is returned by Put when a record would map a second
// source issue to a destination issue that another record already owns.
var ErrDestinationClaimed = errors.New("destination issue already mapped to another source issue")

// Store is the durable correspondence store. Put must be durable before it
// returns; the engine only counts an issue as done once Put has succeeded.
// Implementations must support concurrent Put for distinct source IDs.
type Store interface {
	// Get returns the record for a source issue and whether one exists.
	Get(sourceID int64) (Record, bool, error)

	// Put inserts or overwrites the record for its source issue.
	Put(rec Record) error

	// List returns all records ordered by source ID. Diagnostics only.
	List() ([]Record, error)

	// Close releases underlying resources.
	Close() error
}
