package store

import (
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used by tests and dry runs. It enforces
// the same uniqueness rules as the durable implementations.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]Record
	claimed map[string]int64 // destination ID -> source ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]Record),
		claimed: make(map[string]int64),
	}
}

// Get returns the record for a source issue and whether one exists.
func (s *MemoryStore) Get(sourceID int64) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sourceID]
	return rec, ok, nil
}

// Put inserts or overwrites the record for its source issue.
func (s *MemoryStore) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.claimed[rec.DestinationID]; ok && owner != rec.SourceID {
		return ErrDestinationClaimed
	}
	if prev, ok := s.records[rec.SourceID]; ok && prev.DestinationID != rec.DestinationID {
		delete(s.claimed, prev.DestinationID)
	}
	s.records[rec.SourceID] = rec
	s.claimed[rec.DestinationID] = rec.SourceID
	return nil
}

// List returns all records ordered by source ID.
func (s *MemoryStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
