package anchor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// MockLedger is an in-process IntegrityLedger double. It confirms submissions
// after a configurable number of pending polls and can be programmed to fail
// the first N submissions, which makes retry and exhaustion paths testable
// without an external ledger. It is also selectable as a deployment backend
// for development environments.
type MockLedger struct {
	mu sync.Mutex

	// FailSubmits makes the first N Submit calls return a transient error.
	FailSubmits int
	// PendingPolls makes each submission report pending for N polls before
	// confirming.
	PendingPolls int
	// RejectAll makes every poll report LedgerFailed.
	RejectAll bool

	submits   int
	submitted []interfaces.Digest
	polls     map[interfaces.TxRef]int
}

// NewMockLedger creates a mock ledger that confirms on the first poll.
func NewMockLedger() *MockLedger {
	return &MockLedger{polls: make(map[interfaces.TxRef]int)}
}

// Submit records the digest and returns a synthetic transaction reference.
func (m *MockLedger) Submit(ctx context.Context, digest interfaces.Digest) (interfaces.TxRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submits++
	if m.submits <= m.FailSubmits {
		return "", fmt.Errorf("mock ledger unavailable (submission %d)", m.submits)
	}

	m.submitted = append(m.submitted, digest)
	ref := interfaces.TxRef(fmt.Sprintf("mock-tx-%d", len(m.submitted)))
	m.polls[ref] = 0
	return ref, nil
}

// Poll reports the status of a previously submitted reference.
func (m *MockLedger) Poll(ctx context.Context, ref interfaces.TxRef) (interfaces.LedgerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count, ok := m.polls[ref]
	if !ok {
		return 0, fmt.Errorf("unknown submission %s", ref)
	}

	if m.RejectAll {
		return interfaces.LedgerFailed, nil
	}

	m.polls[ref] = count + 1
	if count < m.PendingPolls {
		return interfaces.LedgerPending, nil
	}
	return interfaces.LedgerConfirmed, nil
}

// Name identifies the backend in logs and config.
func (m *MockLedger) Name() string { return "mock" }

// SubmitCount returns how many Submit calls were made, including failed ones.
func (m *MockLedger) SubmitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submits
}

// Submitted returns the digests the ledger accepted, in order.
func (m *MockLedger) Submitted() []interfaces.Digest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]interfaces.Digest, len(m.submitted))
	copy(out, m.submitted)
	return out
}
