package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStore_PutOverwrites(t *testing.T) {
	st := NewMemoryStore()

	rec := testRecord(101, "YT-1")
	if err := st.Put(rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec.Snapshot.Summary = "updated"
	if err := st.Put(rec); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, ok, _ := st.Get(101)
	if !ok || got.Snapshot.Summary != "updated" {
		t.Errorf("Get = %+v, want overwritten record", got)
	}

	records, _ := st.List()
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestMemoryStore_RejectsClaimedDestination(t *testing.T) {
	st := NewMemoryStore()

	if err := st.Put(testRecord(101, "YT-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := st.Put(testRecord(102, "YT-1")); !errors.Is(err, ErrDestinationClaimed) {
		t.Errorf("Put = %v, want ErrDestinationClaimed", err)
	}
}

func TestMemoryStore_ConcurrentPut(t *testing.T) {
	st := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testRecord(int64(i), fmt.Sprintf("YT-%d", i))
			if err := st.Put(rec); err != nil {
				t.Errorf("Put(%d) failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	records, _ := st.List()
	if len(records) != 50 {
		t.Errorf("records = %d, want 50", len(records))
	}
}
