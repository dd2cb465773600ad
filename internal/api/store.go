package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/skyvis/internal/simulate"
)

// DefaultStoreLimit bounds the number of results a ResultStore keeps.
const DefaultStoreLimit = 256

type resultRecord struct {
	ID        string
	CreatedAt time.Time
	Result    *simulate.Result
}

// ResultStore keeps finished simulations in memory. Once full, the oldest
// record is evicted to make room.
type ResultStore struct {
	mu      sync.Mutex
	limit   int
	order   []string
	results map[string]*resultRecord
}

func NewResultStore(limit int) *ResultStore {
	if limit <= 0 {
		limit = DefaultStoreLimit
	}
	return &ResultStore{
		limit:   limit,
		results: make(map[string]*resultRecord),
	}
}

func (s *ResultStore) Create(res *simulate.Result, now time.Time) *resultRecord {
	rec := &resultRecord{ID: newVisibilitiesID(), CreatedAt: now, Result: res}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.limit {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
	s.results[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec
}

func (s *ResultStore) Get(id string) (*resultRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.results[id]
	return rec, ok
}

func (s *ResultStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return false
	}
	delete(s.results, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func newVisibilitiesID() string {
	return "vis_" + uuid.NewString()
}
