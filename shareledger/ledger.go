package shareledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// PaperShares is the recorded share distribution for a single paper.
type PaperShares struct {
	PaperID   interfaces.PaperID       `json:"paper_id"`
	Threshold int                      `json:"threshold"`
	SplitID   string                   `json:"split_id"`
	Shares    map[int]interfaces.Share `json:"shares"`
	Redeemed  bool                     `json:"redeemed"`
}

// Store persists share distributions keyed by paper id. Implementations do
// not need to be transactional: the Ledger serializes all writes per paper.
type Store interface {
	// Get returns the distribution for a paper, or interfaces.ErrNotFound.
	Get(ctx context.Context, paperID interfaces.PaperID) (PaperShares, error)

	// Put saves a distribution, replacing any previous state for the paper.
	Put(ctx context.Context, record PaperShares) error
}

// Ledger tracks per-paper share distribution and quorum state. All operations
// on the same paper are serialized through a per-paper lock so concurrent
// submissions cannot double-count a share or race past the threshold check.
type Ledger struct {
	store Store
	log   *slog.Logger

	mu    sync.Mutex
	locks map[interfaces.PaperID]*sync.Mutex
}

// New creates a share ledger on top of the given store.
func New(store Store, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{
		store: store,
		log:   log,
		locks: make(map[interfaces.PaperID]*sync.Mutex),
	}
}

// paperLock returns the mutex serializing operations for one paper.
func (l *Ledger) paperLock(paperID interfaces.PaperID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[paperID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[paperID] = lock
	}
	return lock
}

// Distribute assigns each share to exactly one custodian and records the
// distribution. It is idempotent per share index: repeating an identical
// assignment is a no-op, while re-assigning an index to a different custodian
// fails with ErrShareAlreadyDistributed.
func (l *Ledger) Distribute(ctx context.Context, paperID interfaces.PaperID, policy interfaces.ThresholdPolicy, shares []interfaces.Share, holders []interfaces.CustodianID) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	if len(shares) != len(holders) {
		return fmt.Errorf("%w: %d shares for %d holders", interfaces.ErrInvalidPolicy, len(shares), len(holders))
	}

	seen := make(map[interfaces.CustodianID]bool, len(holders))
	for _, holder := range holders {
		if err := holder.Validate(); err != nil {
			return err
		}
		if seen[holder] {
			return fmt.Errorf("%w: custodian %s assigned more than one share", interfaces.ErrInvalidPolicy, holder)
		}
		seen[holder] = true
	}

	lock := l.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.Get(ctx, paperID)
	if err != nil {
		record = PaperShares{
			PaperID:   paperID,
			Threshold: policy.Threshold,
			Shares:    make(map[int]interfaces.Share, len(shares)),
		}
	}

	now := time.Now().UTC()
	for i, share := range shares {
		if record.SplitID == "" {
			record.SplitID = share.SplitID
		} else if record.SplitID != share.SplitID {
			return fmt.Errorf("%w: share %d belongs to split %s", interfaces.ErrInconsistentShares, share.Index, share.SplitID)
		}

		existing, ok := record.Shares[share.Index]
		if ok {
			if existing.Holder == holders[i] && bytes.Equal(existing.Value, share.Value) {
				continue // idempotent re-distribution
			}
			return fmt.Errorf("%w: share %d already held by %s", interfaces.ErrShareAlreadyDistributed, share.Index, existing.Holder)
		}

		share.Holder = holders[i]
		share.DistributedAt = now
		record.Shares[share.Index] = share
	}

	if err := l.store.Put(ctx, record); err != nil {
		return fmt.Errorf("failed to save distribution: %w", err)
	}

	l.log.Info("Distributed shares",
		slog.String("paper_id", paperID.String()),
		slog.Int("shares", len(shares)),
		slog.Int("threshold", policy.Threshold))

	return nil
}

// Submit validates a custodian's share against the recorded distribution and
// marks it used. Replaying an already-used share fails with
// ErrShareAlreadyUsed. After redemption, submissions are still accepted and
// recorded for audit but do not change the redeemed state.
func (l *Ledger) Submit(ctx context.Context, paperID interfaces.PaperID, shareIndex int, value []byte) (interfaces.QuorumState, error) {
	lock := l.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.Get(ctx, paperID)
	if err != nil {
		return interfaces.QuorumState{}, fmt.Errorf("%w: no distribution for paper %s", interfaces.ErrNotFound, paperID)
	}

	share, ok := record.Shares[shareIndex]
	if !ok {
		return interfaces.QuorumState{}, fmt.Errorf("%w: share %d not distributed for paper %s", interfaces.ErrNotFound, shareIndex, paperID)
	}

	if !bytes.Equal(share.Value, value) {
		return interfaces.QuorumState{}, fmt.Errorf("%w: submitted value does not match share %d", interfaces.ErrNotFound, shareIndex)
	}

	if share.Used {
		return interfaces.QuorumState{}, fmt.Errorf("%w: share %d for paper %s", interfaces.ErrShareAlreadyUsed, shareIndex, paperID)
	}

	share.Used = true
	record.Shares[shareIndex] = share

	if err := l.store.Put(ctx, record); err != nil {
		return interfaces.QuorumState{}, fmt.Errorf("failed to record submission: %w", err)
	}

	state := quorumState(record)
	l.log.Info("Share submitted",
		slog.String("paper_id", paperID.String()),
		slog.Int("share_index", shareIndex),
		slog.Int("submitted", state.Submitted),
		slog.Bool("quorum", state.Reached))

	return state, nil
}

// State reports share collection progress for a paper.
func (l *Ledger) State(ctx context.Context, paperID interfaces.PaperID) (interfaces.QuorumState, error) {
	lock := l.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.Get(ctx, paperID)
	if err != nil {
		return interfaces.QuorumState{}, fmt.Errorf("%w: no distribution for paper %s", interfaces.ErrNotFound, paperID)
	}

	return quorumState(record), nil
}

// QuorumReached reports whether enough distinct valid shares have been
// submitted to reconstruct the paper key.
func (l *Ledger) QuorumReached(ctx context.Context, paperID interfaces.PaperID) (bool, error) {
	state, err := l.State(ctx, paperID)
	if err != nil {
		return false, err
	}
	return state.Reached, nil
}

// SubmittedShares returns the shares submitted so far, for reconstruction once
// quorum is reached.
func (l *Ledger) SubmittedShares(ctx context.Context, paperID interfaces.PaperID) ([]interfaces.Share, error) {
	lock := l.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("%w: no distribution for paper %s", interfaces.ErrNotFound, paperID)
	}

	var submitted []interfaces.Share
	for _, share := range record.Shares {
		if share.Used {
			submitted = append(submitted, share)
		}
	}
	return submitted, nil
}

// DistributedShares returns every distributed share for a paper, sorted by
// index. This is the delivery surface: each custodian receives exactly the
// share assigned to them.
func (l *Ledger) DistributedShares(ctx context.Context, paperID interfaces.PaperID) ([]interfaces.Share, error) {
	lock := l.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("%w: no distribution for paper %s", interfaces.ErrNotFound, paperID)
	}

	shares := make([]interfaces.Share, 0, len(record.Shares))
	for _, share := range record.Shares {
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Index < shares[j].Index })
	return shares, nil
}

// MarkRedeemed records that the paper key has been reconstructed and the
// payload decrypted. Idempotent: repeated calls are no-ops.
func (l *Ledger) MarkRedeemed(ctx context.Context, paperID interfaces.PaperID) error {
	lock := l.paperLock(paperID)
	lock.Lock()
	defer lock.Unlock()

	record, err := l.store.Get(ctx, paperID)
	if err != nil {
		return fmt.Errorf("%w: no distribution for paper %s", interfaces.ErrNotFound, paperID)
	}

	if record.Redeemed {
		return nil
	}

	record.Redeemed = true
	if err := l.store.Put(ctx, record); err != nil {
		return fmt.Errorf("failed to mark paper redeemed: %w", err)
	}

	l.log.Info("Paper redeemed", slog.String("paper_id", paperID.String()))
	return nil
}

func quorumState(record PaperShares) interfaces.QuorumState {
	submitted := 0
	for _, share := range record.Shares {
		if share.Used {
			submitted++
		}
	}

	return interfaces.QuorumState{
		PaperID:   record.PaperID,
		Submitted: submitted,
		Threshold: record.Threshold,
		Reached:   submitted >= record.Threshold,
		Redeemed:  record.Redeemed,
	}
}
