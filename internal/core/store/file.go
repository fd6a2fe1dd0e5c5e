package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore is the durable Store implementation. Records are kept as one JSON
// object per line in an append-only file; on open the file is replayed and
// the last line for each source ID wins. Each file is scoped to a single
// (owner, repo, projectID) triple so that runs against different projects
// never share correspondence records.
type FileStore struct {
	mu      sync.Mutex
	file    *os.File
	records map[int64]Record
	claimed map[string]int64
}

// NewFileStore opens (creating if needed) the store file for the given scope
// under dir.
func NewFileStore(dir, owner, repo, projectID string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	path := filepath.Join(dir, scopeFileName(owner, repo, projectID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}

	s := &FileStore{
		file:    f,
		records: make(map[int64]Record),
		claimed: make(map[string]int64),
	}
	if err := s.replay(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// scopeFileName builds a filesystem-safe name for one sync scope.
func scopeFileName(owner, repo, projectID string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', ':', ' ':
				return '-'
			}
			return r
		}, s)
	}
	return fmt.Sprintf("%s__%s__%s.jsonl", clean(owner), clean(repo), clean(projectID))
}

// replay loads all records from the file, last line per source ID winning.
func (s *FileStore) replay() error {
	if _, err := s.file.Seek(0, 0); err != nil {
		return fmt.Errorf("seeking state file: %w", err)
	}

	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return fmt.Errorf("corrupt state file at line %d: %w", line, err)
		}
		if prev, ok := s.records[rec.SourceID]; ok {
			delete(s.claimed, prev.DestinationID)
		}
		s.records[rec.SourceID] = rec
		s.claimed[rec.DestinationID] = rec.SourceID
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}
	return nil
}

// Get returns the record for a source issue and whether one exists.
func (s *FileStore) Get(sourceID int64) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sourceID]
	return rec, ok, nil
}

// Put appends the record and syncs the file before updating the in-memory
// view, so a record is never visible without being durable.
func (s *FileStore) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.claimed[rec.DestinationID]; ok && owner != rec.SourceID {
		return ErrDestinationClaimed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("syncing state file: %w", err)
	}

	if prev, ok := s.records[rec.SourceID]; ok && prev.DestinationID != rec.DestinationID {
		delete(s.claimed, prev.DestinationID)
	}
	s.records[rec.SourceID] = rec
	s.claimed[rec.DestinationID] = rec.SourceID
	return nil
}

// List returns all records ordered by source ID.
func (s *FileStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out, nil
}

// Close closes the underlying file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
