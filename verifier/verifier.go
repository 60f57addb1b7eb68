// Package verifier checks locally recomputed digests against the integrity
// ledger's confirmed anchor history.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/anchor"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/metrics"
)

// Result is the outcome of one verification. A failed verification is a
// normal result, not an error: errors are reserved for infrastructure
// problems reaching the anchor store.
type Result struct {
	// Verified is true when the local digest matches the latest confirmed
	// anchor for the entity.
	Verified bool
	// Evidence is the confirmed anchor record the digest was compared
	// against, nil when no confirmed anchor exists.
	Evidence *anchor.Record
	// Reason explains a negative result.
	Reason string
}

// Verifier compares local state digests against anchored ones.
type Verifier struct {
	store   anchor.Store
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New creates a verifier over an anchor store. The metrics argument may be nil.
func New(store anchor.Store, log *slog.Logger, m *metrics.Metrics) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{store: store, log: log, metrics: m}
}

// Verify compares a locally computed digest with the latest confirmed anchor
// for the entity. Pending and failed anchors are never trusted; with no
// confirmed anchor at all the entity is unverifiable and the result is
// negative.
func (v *Verifier) Verify(ctx context.Context, entity interfaces.EntityRef, local interfaces.Digest) (Result, error) {
	if err := entity.Validate(); err != nil {
		return Result{}, err
	}

	record, err := v.store.LatestConfirmed(ctx, entity)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			v.count("no_anchor")
			v.log.Warn("No confirmed anchor for entity",
				slog.String("entity", entity.String()))
			return Result{
				Verified: false,
				Reason:   "no confirmed anchor for entity",
			}, nil
		}
		return Result{}, fmt.Errorf("failed to load anchor history: %w", err)
	}

	if !record.Digest.Equal(local) {
		v.count("mismatch")
		v.log.Warn("Digest mismatch against confirmed anchor",
			slog.String("entity", entity.String()),
			slog.String("local", local.String()),
			slog.String("anchored", record.Digest.String()),
			slog.String("record_id", record.ID))
		return Result{
			Verified: false,
			Evidence: &record,
			Reason:   "local digest does not match latest confirmed anchor",
		}, nil
	}

	v.count("verified")
	return Result{Verified: true, Evidence: &record}, nil
}

func (v *Verifier) count(outcome string) {
	if v.metrics != nil {
		v.metrics.Verifications.WithLabelValues(outcome).Inc()
	}
}
