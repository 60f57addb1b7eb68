package secretshare

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

func TestSplit_PolicyValidation(t *testing.T) {
	secret := []byte("PAPER_KEY_001")

	_, err := Split(secret, interfaces.ThresholdPolicy{Threshold: 1, TotalShares: 5})
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy, "threshold below 2 should be rejected")

	_, err = Split(secret, interfaces.ThresholdPolicy{Threshold: 6, TotalShares: 5})
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy, "threshold above total should be rejected")

	_, err = Split(secret, interfaces.ThresholdPolicy{Threshold: 3, TotalShares: 25})
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy, "total above maximum should be rejected")

	_, err = Split(nil, interfaces.ThresholdPolicy{Threshold: 3, TotalShares: 5})
	assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy, "empty secret should be rejected")
}

func TestSplit_ProducesTaggedShares(t *testing.T) {
	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	shares, err := Split(secret, interfaces.ThresholdPolicy{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)
	require.Len(t, shares, 5, "should produce exactly N shares")

	splitID := shares[0].SplitID
	require.NotEmpty(t, splitID)
	for i, share := range shares {
		assert.Equal(t, i+1, share.Index, "share indexes are 1-based and sequential")
		assert.Equal(t, splitID, share.SplitID, "all shares carry the same split id")
		assert.NotEmpty(t, share.Value)
	}
}

func TestReconstruct_AnyThresholdSubset(t *testing.T) {
	secret := []byte("PAPER_KEY_001")

	shares, err := Split(secret, interfaces.ThresholdPolicy{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)

	// Shares 1, 3 and 5 recover the key.
	subset := []interfaces.Share{shares[0], shares[2], shares[4]}
	recovered, err := Reconstruct(subset, 3)
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)

	// Every 3-of-5 subset recovers the identical key.
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			for k := j + 1; k < 5; k++ {
				got, err := Reconstruct([]interfaces.Share{shares[i], shares[j], shares[k]}, 3)
				require.NoError(t, err)
				assert.Equal(t, secret, got, "subset {%d,%d,%d} should recover the key", i+1, j+1, k+1)
			}
		}
	}
}

func TestReconstruct_InsufficientShares(t *testing.T) {
	secret := []byte("PAPER_KEY_001")

	shares, err := Split(secret, interfaces.ThresholdPolicy{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)

	// Shares 2 and 4 are below the threshold.
	_, err = Reconstruct([]interfaces.Share{shares[1], shares[3]}, 3)
	assert.ErrorIs(t, err, interfaces.ErrInsufficientShares)

	// A duplicated share does not count twice.
	_, err = Reconstruct([]interfaces.Share{shares[0], shares[0], shares[1]}, 3)
	assert.ErrorIs(t, err, interfaces.ErrInsufficientShares)
}

func TestReconstruct_MixedSplitsRejected(t *testing.T) {
	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	policy := interfaces.ThresholdPolicy{Threshold: 2, TotalShares: 3}
	first, err := Split(secret, policy)
	require.NoError(t, err)
	second, err := Split(secret, policy)
	require.NoError(t, err)

	_, err = Reconstruct([]interfaces.Share{first[0], second[1]}, 2)
	assert.ErrorIs(t, err, interfaces.ErrInconsistentShares)
}

func TestReconstruct_BelowThresholdRevealsNothingUseful(t *testing.T) {
	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	shares, err := Split(secret, interfaces.ThresholdPolicy{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)

	// A single share never equals the secret.
	for _, share := range shares {
		assert.NotEqual(t, secret, share.Value)
	}
}
