package shareledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/secretshare"
)

func setupDistribution(t *testing.T, threshold, total int) (*Ledger, interfaces.PaperID, []interfaces.Share) {
	t.Helper()

	ledger := New(NewMemoryStore(), nil)
	paperID := interfaces.PaperID("PAPER-2026-MATH-01")
	policy := interfaces.ThresholdPolicy{Threshold: threshold, TotalShares: total}

	shares, err := secretshare.Split([]byte("PAPER_KEY_001"), policy)
	require.NoError(t, err)

	holders := make([]interfaces.CustodianID, total)
	for i := range holders {
		holders[i] = interfaces.CustodianID("custodian-" + string(rune('a'+i)))
	}

	require.NoError(t, ledger.Distribute(context.Background(), paperID, policy, shares, holders))
	return ledger, paperID, shares
}

func TestDistribute_Validation(t *testing.T) {
	ledger := New(NewMemoryStore(), nil)
	ctx := context.Background()
	paperID := interfaces.PaperID("P1")
	policy := interfaces.ThresholdPolicy{Threshold: 2, TotalShares: 3}

	shares, err := secretshare.Split([]byte("secret"), policy)
	require.NoError(t, err)

	// Holder count mismatch.
	err = ledger.Distribute(ctx, paperID, policy, shares, []interfaces.CustodianID{"a", "b"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy)

	// Duplicate custodian.
	err = ledger.Distribute(ctx, paperID, policy, shares, []interfaces.CustodianID{"a", "b", "a"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy)

	// Empty custodian id.
	err = ledger.Distribute(ctx, paperID, policy, shares, []interfaces.CustodianID{"a", "b", " "})
	assert.Error(t, err)
}

func TestDistribute_IdempotentPerShare(t *testing.T) {
	ctx := context.Background()
	ledger := New(NewMemoryStore(), nil)
	paperID := interfaces.PaperID("P1")
	policy := interfaces.ThresholdPolicy{Threshold: 2, TotalShares: 3}

	shares, err := secretshare.Split([]byte("secret"), policy)
	require.NoError(t, err)
	holders := []interfaces.CustodianID{"a", "b", "c"}

	require.NoError(t, ledger.Distribute(ctx, paperID, policy, shares, holders))

	// Identical re-distribution is a no-op.
	require.NoError(t, ledger.Distribute(ctx, paperID, policy, shares, holders))

	// Re-assigning a share index to a different holder is rejected.
	err = ledger.Distribute(ctx, paperID, policy, shares, []interfaces.CustodianID{"x", "y", "z"})
	assert.ErrorIs(t, err, interfaces.ErrShareAlreadyDistributed)
}

func TestSubmit_QuorumProgress(t *testing.T) {
	ctx := context.Background()
	ledger, paperID, shares := setupDistribution(t, 3, 5)

	state, err := ledger.Submit(ctx, paperID, shares[0].Index, shares[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Submitted)
	assert.False(t, state.Reached)

	state, err = ledger.Submit(ctx, paperID, shares[2].Index, shares[2].Value)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Submitted)
	assert.False(t, state.Reached)

	state, err = ledger.Submit(ctx, paperID, shares[4].Index, shares[4].Value)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Submitted)
	assert.True(t, state.Reached)

	reached, err := ledger.QuorumReached(ctx, paperID)
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestSubmit_Rejections(t *testing.T) {
	ctx := context.Background()
	ledger, paperID, shares := setupDistribution(t, 3, 5)

	// Unknown paper.
	_, err := ledger.Submit(ctx, interfaces.PaperID("missing"), 1, shares[0].Value)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	// Unknown share index.
	_, err = ledger.Submit(ctx, paperID, 99, shares[0].Value)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	// Value not matching the recorded share.
	_, err = ledger.Submit(ctx, paperID, shares[0].Index, []byte("forged"))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	// Replay of an already-used share.
	_, err = ledger.Submit(ctx, paperID, shares[0].Index, shares[0].Value)
	require.NoError(t, err)
	_, err = ledger.Submit(ctx, paperID, shares[0].Index, shares[0].Value)
	assert.ErrorIs(t, err, interfaces.ErrShareAlreadyUsed)
}

func TestSubmit_ConcurrentReplaysCountOnce(t *testing.T) {
	ctx := context.Background()
	ledger, paperID, shares := setupDistribution(t, 3, 5)

	const submitters = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, submitters)

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Submit(ctx, paperID, shares[1].Index, shares[1].Value); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent submission of the same share may succeed")

	state, err := ledger.State(ctx, paperID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Submitted)
}

func TestMarkRedeemed_Idempotent(t *testing.T) {
	ctx := context.Background()
	ledger, paperID, shares := setupDistribution(t, 2, 3)

	_, err := ledger.Submit(ctx, paperID, shares[0].Index, shares[0].Value)
	require.NoError(t, err)
	_, err = ledger.Submit(ctx, paperID, shares[1].Index, shares[1].Value)
	require.NoError(t, err)

	require.NoError(t, ledger.MarkRedeemed(ctx, paperID))
	require.NoError(t, ledger.MarkRedeemed(ctx, paperID))

	// Post-redemption submissions are accepted for audit.
	state, err := ledger.Submit(ctx, paperID, shares[2].Index, shares[2].Value)
	require.NoError(t, err)
	assert.True(t, state.Redeemed)
	assert.Equal(t, 3, state.Submitted)
}

func TestSubmittedShares_Reconstructable(t *testing.T) {
	ctx := context.Background()
	ledger, paperID, shares := setupDistribution(t, 3, 5)

	for _, idx := range []int{0, 2, 4} {
		_, err := ledger.Submit(ctx, paperID, shares[idx].Index, shares[idx].Value)
		require.NoError(t, err)
	}

	submitted, err := ledger.SubmittedShares(ctx, paperID)
	require.NoError(t, err)
	require.Len(t, submitted, 3)

	secret, err := secretshare.Reconstruct(submitted, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("PAPER_KEY_001"), secret)
}
