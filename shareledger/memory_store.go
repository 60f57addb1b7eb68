package shareledger

import (
	"context"
	"sync"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// MemoryStore is an in-memory Store implementation, suitable for tests and
// single-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[interfaces.PaperID]PaperShares
}

// NewMemoryStore creates an empty in-memory share store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[interfaces.PaperID]PaperShares),
	}
}

// Get returns a deep copy of the distribution for a paper.
func (s *MemoryStore) Get(ctx context.Context, paperID interfaces.PaperID) (PaperShares, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[paperID]
	if !ok {
		return PaperShares{}, interfaces.ErrNotFound
	}
	return copyRecord(record), nil
}

// Put saves a deep copy of the distribution.
func (s *MemoryStore) Put(ctx context.Context, record PaperShares) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.PaperID] = copyRecord(record)
	return nil
}

// copyRecord clones a record so callers cannot alias the stored maps and
// slices.
func copyRecord(record PaperShares) PaperShares {
	clone := record
	clone.Shares = make(map[int]interfaces.Share, len(record.Shares))
	for idx, share := range record.Shares {
		value := make([]byte, len(share.Value))
		copy(value, share.Value)
		share.Value = value
		clone.Shares[idx] = share
	}
	return clone
}
