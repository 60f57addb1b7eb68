// Package papervault orchestrates the sealed-paper lifecycle: sealing a paper
// under a fresh key split across custodians, collecting shares back, and
// redeeming the paper once quorum is reached.
package papervault

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/metrics"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/papercipher"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/secretshare"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/shareledger"
)

// SealedPaper records where a sealed payload lives and under what policy it
// was split. The paper key itself is never persisted; it exists only in the
// custodians' shares.
type SealedPaper struct {
	PaperID   interfaces.PaperID         `json:"paper_id"`
	PayloadID interfaces.ContentID       `json:"payload_id"`
	Policy    interfaces.ThresholdPolicy `json:"policy"`
	SplitID   string                     `json:"split_id"`
}

// Service seals and redeems exam papers.
type Service struct {
	shares  *shareledger.Ledger
	backend interfaces.StorageBackend
	log     *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	sealed map[interfaces.PaperID]SealedPaper
}

// New creates the lifecycle service. The metrics argument may be nil.
func New(shares *shareledger.Ledger, backend interfaces.StorageBackend, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		shares:  shares,
		backend: backend,
		log:     log,
		metrics: m,
		sealed:  make(map[interfaces.PaperID]SealedPaper),
	}
}

// Sealed returns the sealed-paper record for a paper id.
func (s *Service) Sealed(ctx context.Context, paperID interfaces.PaperID) (SealedPaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sealed[paperID]
	if !ok {
		return SealedPaper{}, fmt.Errorf("%w: paper %s not sealed", interfaces.ErrNotFound, paperID)
	}
	return record, nil
}

// Seal encrypts the paper under a fresh key, stores the sealed payload, splits
// the key per the policy, and distributes the shares to the custodians. The
// key is wiped from memory before returning; after Seal only a quorum of
// custodians can bring the paper back.
func (s *Service) Seal(ctx context.Context, paperID interfaces.PaperID, content []byte, policy interfaces.ThresholdPolicy, custodians []interfaces.CustodianID) (SealedPaper, error) {
	if err := policy.Validate(); err != nil {
		return SealedPaper{}, err
	}
	if len(content) == 0 {
		return SealedPaper{}, fmt.Errorf("empty paper content")
	}

	key, err := papercipher.NewPaperKey()
	if err != nil {
		return SealedPaper{}, fmt.Errorf("failed to generate paper key: %w", err)
	}
	defer papercipher.WipeKey(key)

	payload, err := papercipher.Encrypt(content, key)
	if err != nil {
		return SealedPaper{}, fmt.Errorf("failed to encrypt paper: %w", err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return SealedPaper{}, fmt.Errorf("failed to encode sealed payload: %w", err)
	}

	payloadID, err := s.backend.Store(ctx, payloadBytes, interfaces.PayloadType)
	if err != nil {
		return SealedPaper{}, fmt.Errorf("failed to store sealed payload: %w", err)
	}

	sharesOut, err := secretshare.Split(key, policy)
	if err != nil {
		return SealedPaper{}, fmt.Errorf("failed to split paper key: %w", err)
	}

	if err := s.shares.Distribute(ctx, paperID, policy, sharesOut, custodians); err != nil {
		return SealedPaper{}, fmt.Errorf("failed to distribute shares: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PapersSealed.Inc()
	}
	s.log.Info("Paper sealed",
		slog.String("paper_id", string(paperID)),
		slog.String("payload_id", payloadID.String()),
		slog.Int("threshold", policy.Threshold),
		slog.Int("total_shares", policy.TotalShares))

	record := SealedPaper{
		PaperID:   paperID,
		PayloadID: payloadID,
		Policy:    policy,
		SplitID:   sharesOut[0].SplitID,
	}

	s.mu.Lock()
	s.sealed[paperID] = record
	s.mu.Unlock()

	return record, nil
}

// SubmitShare validates and records one custodian share, returning the
// updated quorum state.
func (s *Service) SubmitShare(ctx context.Context, paperID interfaces.PaperID, index int, value []byte) (interfaces.QuorumState, error) {
	state, err := s.shares.Submit(ctx, paperID, index, value)
	if err != nil {
		return interfaces.QuorumState{}, err
	}

	if s.metrics != nil {
		s.metrics.SharesSubmitted.Inc()
		if state.Reached && state.Submitted == state.Threshold {
			s.metrics.QuorumReached.Inc()
		}
	}

	return state, nil
}

// Redeem reconstructs the paper key from the submitted shares and decrypts
// the sealed payload. Redemption requires quorum; short of it the call fails
// with ErrInsufficientShares. Redeeming an already-redeemed paper decrypts
// again rather than failing, since redemption marks state but destroys
// nothing.
func (s *Service) Redeem(ctx context.Context, sealed SealedPaper) ([]byte, error) {
	reached, err := s.shares.QuorumReached(ctx, sealed.PaperID)
	if err != nil {
		return nil, err
	}
	if !reached {
		state, serr := s.shares.State(ctx, sealed.PaperID)
		if serr != nil {
			return nil, serr
		}
		return nil, fmt.Errorf("%w: %d of %d shares submitted",
			interfaces.ErrInsufficientShares, state.Submitted, state.Threshold)
	}

	submitted, err := s.shares.SubmittedShares(ctx, sealed.PaperID)
	if err != nil {
		return nil, err
	}

	key, err := secretshare.Reconstruct(submitted, sealed.Policy.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct paper key: %w", err)
	}
	defer papercipher.WipeKey(key)

	payloadBytes, err := s.backend.Fetch(ctx, sealed.PayloadID, interfaces.PayloadType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sealed payload: %w", err)
	}

	var payload interfaces.EncryptedPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode sealed payload: %w", err)
	}

	content, err := papercipher.Decrypt(payload, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt paper: %w", err)
	}

	if err := s.shares.MarkRedeemed(ctx, sealed.PaperID); err != nil {
		return nil, fmt.Errorf("failed to mark paper redeemed: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PapersRedeemed.Inc()
	}
	s.log.Info("Paper redeemed",
		slog.String("paper_id", string(sealed.PaperID)),
		slog.Int("shares_used", len(submitted)))

	return content, nil
}

// QuorumState reports submission progress for a paper.
func (s *Service) QuorumState(ctx context.Context, paperID interfaces.PaperID) (interfaces.QuorumState, error) {
	return s.shares.State(ctx, paperID)
}

// DistributedShares returns the shares assigned at seal time, for delivery to
// their custodians.
func (s *Service) DistributedShares(ctx context.Context, paperID interfaces.PaperID) ([]interfaces.Share, error) {
	return s.shares.DistributedShares(ctx, paperID)
}
