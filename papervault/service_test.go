package papervault

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/shareledger"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/storage"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	ledger := shareledger.New(shareledger.NewMemoryStore(), nil)
	backend := storage.NewMemoryBackend(nil)
	return New(ledger, backend, nil, nil)
}

func sealTestPaper(t *testing.T, svc *Service, threshold, total int) (SealedPaper, []interfaces.Share) {
	t.Helper()
	ctx := context.Background()

	paperID := interfaces.PaperID("PAPER-2026-PHY-01")
	policy := interfaces.ThresholdPolicy{Threshold: threshold, TotalShares: total}
	custodians := make([]interfaces.CustodianID, total)
	for i := range custodians {
		custodians[i] = interfaces.CustodianID("custodian-" + string(rune('a'+i)))
	}

	sealed, err := svc.Seal(ctx, paperID, []byte("paper content"), policy, custodians)
	require.NoError(t, err)

	// Custodians hold their shares; the test plays all of them.
	shares, err := svc.shares.DistributedShares(ctx, paperID)
	require.NoError(t, err)
	require.Len(t, shares, total)

	return sealed, shares
}

func TestSealAndRedeem_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	sealed, shares := sealTestPaper(t, svc, 3, 5)

	// Short of quorum, redemption is refused.
	for _, idx := range []int{0, 2} {
		_, err := svc.SubmitShare(ctx, sealed.PaperID, shares[idx].Index, shares[idx].Value)
		require.NoError(t, err)
	}
	_, err := svc.Redeem(ctx, sealed)
	assert.ErrorIs(t, err, interfaces.ErrInsufficientShares)

	// Third share reaches quorum.
	state, err := svc.SubmitShare(ctx, sealed.PaperID, shares[4].Index, shares[4].Value)
	require.NoError(t, err)
	assert.True(t, state.Reached)

	content, err := svc.Redeem(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("paper content"), content)

	// Redemption is repeatable; state stays redeemed.
	content, err = svc.Redeem(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("paper content"), content)

	finalState, err := svc.QuorumState(ctx, sealed.PaperID)
	require.NoError(t, err)
	assert.True(t, finalState.Redeemed)
}

func TestSealAndRedeem_AnyContentLength(t *testing.T) {
	// Paper content is plaintext, not key material: the round trip must work
	// for any non-empty length, not just the cipher's 32-byte key size.
	ctx := context.Background()

	for _, content := range [][]byte{
		[]byte("q"),
		bytes.Repeat([]byte{0xA5}, 32),
		bytes.Repeat([]byte("question "), 512),
	} {
		svc := setupService(t)
		policy := interfaces.ThresholdPolicy{Threshold: 2, TotalShares: 3}
		custodians := []interfaces.CustodianID{"a", "b", "c"}

		sealed, err := svc.Seal(ctx, "PAPER-2026-CHM-01", content, policy, custodians)
		require.NoError(t, err, "content length %d", len(content))

		shares, err := svc.DistributedShares(ctx, sealed.PaperID)
		require.NoError(t, err)
		for _, share := range shares[:2] {
			_, err = svc.SubmitShare(ctx, sealed.PaperID, share.Index, share.Value)
			require.NoError(t, err)
		}

		got, err := svc.Redeem(ctx, sealed)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	}
}

func TestSeal_Validation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	custodians := []interfaces.CustodianID{"a", "b", "c"}

	_, err := svc.Seal(ctx, "P1", []byte("content"), interfaces.ThresholdPolicy{Threshold: 1, TotalShares: 3}, custodians)
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy)

	_, err = svc.Seal(ctx, "P1", nil, interfaces.ThresholdPolicy{Threshold: 2, TotalShares: 3}, custodians)
	assert.Error(t, err)

	_, err = svc.Seal(ctx, "P1", []byte("content"), interfaces.ThresholdPolicy{Threshold: 2, TotalShares: 3}, custodians[:2])
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy)
}

func TestRedeem_ForgedShareNeverCounts(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	sealed, shares := sealTestPaper(t, svc, 2, 3)

	_, err := svc.SubmitShare(ctx, sealed.PaperID, shares[0].Index, shares[0].Value)
	require.NoError(t, err)

	// A forged value for a distributed index is rejected and does not count.
	_, err = svc.SubmitShare(ctx, sealed.PaperID, shares[1].Index, []byte("forged"))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = svc.Redeem(ctx, sealed)
	assert.ErrorIs(t, err, interfaces.ErrInsufficientShares)
}

func TestRedeem_TamperedPayloadFailsClosed(t *testing.T) {
	ctx := context.Background()
	ledger := shareledger.New(shareledger.NewMemoryStore(), nil)
	backend := storage.NewMemoryBackend(nil)
	svc := New(ledger, backend, nil, nil)

	sealed, shares := sealTestPaper(t, svc, 2, 3)
	for _, idx := range []int{0, 1} {
		_, err := svc.SubmitShare(ctx, sealed.PaperID, shares[idx].Index, shares[idx].Value)
		require.NoError(t, err)
	}

	// Point the sealed record at a payload whose ciphertext was swapped out.
	tampered, err := backend.Store(ctx, []byte(`{"ciphertext":"AAAA","nonce":"AAAAAAAAAAAAAAAA","tag":"AAAAAAAAAAAAAAAAAAAAAA=="}`), interfaces.PayloadType)
	require.NoError(t, err)
	sealed.PayloadID = tampered

	_, err = svc.Redeem(ctx, sealed)
	assert.ErrorIs(t, err, interfaces.ErrAuthenticationFailure)
}
