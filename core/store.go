package callflow

import (
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
)

// CallStateStore is an in-process, concurrency-safe store of call records.
//
// Put and Get operate on snapshots: records passed in and handed out are
// deep copies, so callers can never mutate stored state by aliasing. Update
// runs its callback under a per-call lock, which serializes the
// check-then-act sequences the webhook handlers rely on (claiming a
// transcription, short-circuiting a duplicate recording).
type CallStateStore struct {
	mu      sync.Mutex
	records map[string]CallRecord
	locks   map[string]*sync.Mutex
}

func NewCallStateStore() *CallStateStore {
	return &CallStateStore{
		records: map[string]CallRecord{},
		locks:   map[string]*sync.Mutex{},
	}
}

// Put stores a snapshot of the record under its ID, replacing any previous
// record for the same call.
func (s *CallStateStore) Put(record CallRecord) {
	record = cloneRecord(record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
}

// Get returns a snapshot of the record for the given call, and whether one
// exists.
func (s *CallStateStore) Get(id string) (CallRecord, bool) {
	s.mu.Lock()
	record, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return CallRecord{}, false
	}
	return cloneRecord(record), true
}

// Update runs apply under a lock held for the given call only. The callback
// receives the current record (or a zero record carrying the ID when none
// exists yet, with exists set accordingly) and may mutate it freely; the
// mutated record is persisted when apply returns true and discarded
// otherwise. Updates for distinct calls proceed in parallel.
func (s *CallStateStore) Update(id string, apply func(record *CallRecord, exists bool) bool) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	record, exists := s.records[id]
	s.mu.Unlock()
	if exists {
		record = cloneRecord(record)
	} else {
		record = CallRecord{ID: id}
	}

	if !apply(&record, exists) {
		return
	}

	s.mu.Lock()
	s.records[id] = record
	s.mu.Unlock()
}

// Remove deletes the record. It is safe to call for unknown calls. The
// per-call lock entry is kept: deleting it while an Update for the same call
// is still holding or waiting on it would let a later Update mint a second
// lock and run unserialized.
func (s *CallStateStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

// Count reports the number of records currently held.
func (s *CallStateStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// IDs returns the identifiers of all records currently held, in no
// particular order.
func (s *CallStateStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids
}

func (s *CallStateStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func cloneRecord(record CallRecord) CallRecord {
	var clone CallRecord
	if err := copier.CopyWithOption(&clone, &record, copier.Option{DeepCopy: true}); err != nil {
		// Only reachable if CallRecord grows a field copier cannot handle.
		panic(fmt.Sprintf("call record not copyable: %v", err))
	}
	return clone
}
