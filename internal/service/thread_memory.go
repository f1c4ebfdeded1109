package service

import (
	"context"
	"sync"
	"time"

	"github.com/pageza/snapcook/backend/internal/types"
)

// MemoryThreadStore keeps threads in process memory. Expired threads are
// dropped on access and by a sweep that runs at most once per ttl.
type MemoryThreadStore struct {
	mu        sync.Mutex
	threads   map[string]*memoryThread
	limit     int
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

type memoryThread struct {
	thread    types.Thread
	expiresAt time.Time
}

// NewMemoryThreadStore creates a store that keeps at most limit messages per
// thread and forgets a thread ttl after its last append.
func NewMemoryThreadStore(limit int, ttl time.Duration) *MemoryThreadStore {
	return &MemoryThreadStore{
		threads: make(map[string]*memoryThread),
		limit:   limit,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryThreadStore) Load(_ context.Context, id string) (types.Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mt, ok := s.lookup(id)
	if !ok {
		return types.Thread{ID: id}, false, nil
	}
	t := mt.thread
	t.Messages = append([]types.Message(nil), t.Messages...)
	return t, true, nil
}

func (s *MemoryThreadStore) Append(_ context.Context, id, recipeContext string, msgs ...types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	mt, ok := s.lookup(id)
	if !ok {
		mt = &memoryThread{thread: types.Thread{ID: id}}
		s.threads[id] = mt
	}
	if mt.thread.RecipeContext == "" {
		mt.thread.RecipeContext = recipeContext
	}
	mt.thread.Messages = append(mt.thread.Messages, msgs...)
	if s.limit > 0 && len(mt.thread.Messages) > s.limit {
		kept := mt.thread.Messages[len(mt.thread.Messages)-s.limit:]
		mt.thread.Messages = append([]types.Message(nil), kept...)
	}
	mt.expiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryThreadStore) Ping(context.Context) error {
	return nil
}

// lookup must be called with mu held.
func (s *MemoryThreadStore) lookup(id string) (*memoryThread, bool) {
	mt, ok := s.threads[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !s.now().Before(mt.expiresAt) {
		delete(s.threads, id)
		return nil, false
	}
	return mt, true
}

// sweep drops every expired thread. It must be called with mu held.
func (s *MemoryThreadStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	for id, mt := range s.threads {
		if !now.Before(mt.expiresAt) {
			delete(s.threads, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}
