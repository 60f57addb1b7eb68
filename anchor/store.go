package anchor

import (
	"context"
	"sort"
	"sync"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// Store persists anchor records as an append-only history per entity.
type Store interface {
	// Append adds a new record to an entity's history.
	Append(ctx context.Context, record Record) error

	// Save persists a transitioned state of an existing record.
	Save(ctx context.Context, record Record) error

	// Get returns a record by id, or interfaces.ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// History returns all records for an entity, oldest first.
	History(ctx context.Context, entity interfaces.EntityRef) ([]Record, error)

	// LatestConfirmed returns the most recent confirmed record for an entity,
	// or interfaces.ErrNotFound if none exists.
	LatestConfirmed(ctx context.Context, entity interfaces.EntityRef) (Record, error)
}

// MemoryStore is an in-memory Store implementation, suitable for tests and
// single-node deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]Record
	byEntity map[string][]string
}

// NewMemoryStore creates an empty in-memory anchor store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]Record),
		byEntity: make(map[string][]string),
	}
}

// Append adds a new record to an entity's history.
func (s *MemoryStore) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.Entity.String()
	s.records[record.ID] = record
	s.byEntity[key] = append(s.byEntity[key], record.ID)
	return nil
}

// Save persists a transitioned state of an existing record.
func (s *MemoryStore) Save(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return interfaces.ErrNotFound
	}
	s.records[record.ID] = record
	return nil
}

// Get returns a record by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, interfaces.ErrNotFound
	}
	return record, nil
}

// History returns all records for an entity, oldest first.
func (s *MemoryStore) History(ctx context.Context, entity interfaces.EntityRef) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byEntity[entity.String()]
	history := make([]Record, 0, len(ids))
	for _, id := range ids {
		history = append(history, s.records[id])
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].SubmittedAt.Before(history[j].SubmittedAt)
	})
	return history, nil
}

// LatestConfirmed returns the most recent confirmed record for an entity.
func (s *MemoryStore) LatestConfirmed(ctx context.Context, entity interfaces.EntityRef) (Record, error) {
	history, err := s.History(ctx, entity)
	if err != nil {
		return Record{}, err
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Status == StatusConfirmed {
			return history[i], nil
		}
	}
	return Record{}, interfaces.ErrNotFound
}
