package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"jobboard/internal/interview/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

// numShards spreads per-event locks so unrelated events do not contend.
const numShards = 128

// InMemory keeps events in a map. Execute and Delete serialise on a shard
// lock chosen by event id, which makes read-validate-write atomic per event.
type InMemory struct {
	shards [numShards]sync.Mutex

	mu     sync.RWMutex
	events map[id.EventID]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]*models.Event)}
}

func (s *InMemory) Create(_ context.Context, e *models.Event) error {
	shard := s.lockShard(e.ID)
	defer shard.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; ok {
		return sentinel.ErrConflict
	}
	s.events[e.ID] = e.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.Clone(), nil
}

// ListByApplication returns the application's events ordered by start time.
func (s *InMemory) ListByApplication(_ context.Context, appID id.ApplicationID) ([]*models.Event, error) {
	s.mu.RLock()
	out := make([]*models.Event, 0)
	for _, e := range s.events {
		if e.ApplicationID == appID {
			out = append(out, e.Clone())
		}
	}
	s.mu.RUnlock()
	sortByStart(out)
	return out, nil
}

// ListDueForReminder returns up to limit non-terminal, unreminded events
// starting within lead of now.
func (s *InMemory) ListDueForReminder(_ context.Context, now time.Time, lead time.Duration, limit int) ([]*models.Event, error) {
	s.mu.RLock()
	out := make([]*models.Event, 0)
	for _, e := range s.events {
		if e.DueForReminder(now, lead) {
			out = append(out, e.Clone())
		}
	}
	s.mu.RUnlock()
	sortByStart(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Execute loads the event, runs validate against a copy and, if it passes,
// applies mutate and stores the result. Nothing is written when validate fails.
func (s *InMemory) Execute(ctx context.Context, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error) {
	shard := s.lockShard(eventID)
	defer shard.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	current, ok := s.events[eventID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)

	s.mu.Lock()
	s.events[eventID] = working
	s.mu.Unlock()
	return working.Clone(), nil
}

// Delete removes the event and returns what was stored.
func (s *InMemory) Delete(_ context.Context, eventID id.EventID) (*models.Event, error) {
	shard := s.lockShard(eventID)
	defer shard.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.events, eventID)
	return e, nil
}

func (s *InMemory) lockShard(eventID id.EventID) *sync.Mutex {
	m := &s.shards[shardFor(eventID)]
	m.Lock()
	return m
}

// shardFor hashes the id with FNV-1a.
func shardFor(eventID id.EventID) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range eventID {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return h % numShards
}

func sortByStart(events []*models.Event) {
	slices.SortFunc(events, func(a, b *models.Event) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
