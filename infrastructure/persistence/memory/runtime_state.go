package memory

import (
	"sync/atomic"
	"time"

	"simstudio-backend/application/ports"
	"simstudio-backend/domain/core/aggregates"
)

// RuntimeStateStore holds the active graph snapshot with single-writer,
// many-reader, copy-on-write semantics. Install swaps an immutable snapshot
// pointer; readers that loaded the previous pointer keep a complete view of
// the pre-swap graph, so no locking beyond the atomic pointer is needed.
type RuntimeStateStore struct {
	current atomic.Pointer[ports.RuntimeSnapshot]
	now     func() time.Time
}

// NewRuntimeStateStore creates an empty store; Current returns nil until the
// first Install
func NewRuntimeStateStore() *RuntimeStateStore {
	return &RuntimeStateStore{now: time.Now}
}

// Install atomically replaces the active snapshot and stamps its update time
func (s *RuntimeStateStore) Install(collection *aggregates.GraphCollection) ports.RuntimeSnapshot {
	snapshot := &ports.RuntimeSnapshot{
		Collection: collection,
		UpdatedAt:  s.now(),
	}
	s.current.Store(snapshot)
	return *snapshot
}

// Current returns the active snapshot, or nil when nothing is deployed
func (s *RuntimeStateStore) Current() *ports.RuntimeSnapshot {
	return s.current.Load()
}
