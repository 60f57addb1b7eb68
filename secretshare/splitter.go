package secretshare

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/vault/shamir"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// Split divides a paper key into policy.TotalShares fragments, any
// policy.Threshold of which reconstruct the key. Fewer than the threshold
// reveal nothing about the key beyond its length.
//
// Every split is tagged with a fresh session identifier carried by each share,
// so shares from different splits cannot be silently mixed at reconstruction.
// The caller owns the secret and should wipe it once shares are distributed.
func Split(secret []byte, policy interfaces.ThresholdPolicy) ([]interfaces.Share, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret must not be empty", interfaces.ErrInvalidPolicy)
	}

	raw, err := shamir.Split(secret, policy.TotalShares, policy.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}

	splitID := uuid.New().String()
	shares := make([]interfaces.Share, 0, len(raw))
	for i, value := range raw {
		shares = append(shares, interfaces.Share{
			Index:   i + 1,
			Value:   value,
			SplitID: splitID,
		})
	}

	return shares, nil
}

// Reconstruct combines shares back into the original paper key. It requires at
// least threshold shares with distinct indexes, all belonging to the same
// split. Any valid subset of that size yields an identical key.
func Reconstruct(shares []interfaces.Share, threshold int) ([]byte, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("%w: threshold must be at least 2", interfaces.ErrInvalidPolicy)
	}

	splitID := ""
	distinct := make(map[int][]byte, len(shares))
	for _, share := range shares {
		if len(share.Value) == 0 {
			return nil, fmt.Errorf("%w: share %d has no value", interfaces.ErrInsufficientShares, share.Index)
		}
		if splitID == "" {
			splitID = share.SplitID
		} else if share.SplitID != splitID {
			return nil, fmt.Errorf("%w: share %d carries split %s, expected %s",
				interfaces.ErrInconsistentShares, share.Index, share.SplitID, splitID)
		}
		distinct[share.Index] = share.Value
	}

	if len(distinct) < threshold {
		return nil, fmt.Errorf("%w: got %d distinct shares, need %d",
			interfaces.ErrInsufficientShares, len(distinct), threshold)
	}

	values := make([][]byte, 0, len(distinct))
	for _, value := range distinct {
		values = append(values, value)
	}

	secret, err := shamir.Combine(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInconsistentShares, err)
	}

	return secret, nil
}
