package anchor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// Status is the lifecycle state of an anchor record.
type Status string

const (
	// StatusPending means the digest has been accepted but not yet
	// acknowledged by the external ledger.
	StatusPending Status = "pending"
	// StatusConfirmed means the ledger acknowledged the digest. Terminal.
	StatusConfirmed Status = "confirmed"
	// StatusFailed means retries were exhausted. Terminal unless an operator
	// explicitly resets the record.
	StatusFailed Status = "failed"
)

// Record is one anchoring attempt for an entity digest. Records are
// append-only: anchoring the same entity again creates a new record, and the
// latest confirmed record is authoritative for verification.
//
// Lifecycle transitions return a new record value instead of mutating in
// place, so illegal transitions (for example confirmed back to pending) are
// rejected at the type's boundary rather than by caller discipline.
type Record struct {
	ID          string               `json:"id"`
	Entity      interfaces.EntityRef `json:"entity"`
	Digest      interfaces.Digest    `json:"digest"`
	Status      Status               `json:"status"`
	ExternalRef interfaces.TxRef     `json:"external_ref,omitempty"`
	RetryCount  int                  `json:"retry_count"`
	MaxRetries  int                  `json:"max_retries"`
	ResetCount  int                  `json:"reset_count"`
	MaxResets   int                  `json:"max_resets"`
	SubmittedAt time.Time            `json:"submitted_at"`
	ConfirmedAt *time.Time           `json:"confirmed_at,omitempty"`
	FailedAt    *time.Time           `json:"failed_at,omitempty"`
}

// NewRecord creates a pending record for an entity digest.
func NewRecord(entity interfaces.EntityRef, digest interfaces.Digest, maxRetries, maxResets int) (Record, error) {
	if err := entity.Validate(); err != nil {
		return Record{}, err
	}
	if maxRetries < 1 {
		return Record{}, fmt.Errorf("max retries must be at least 1, got %d", maxRetries)
	}

	return Record{
		ID:          uuid.New().String(),
		Entity:      entity,
		Digest:      digest,
		Status:      StatusPending,
		MaxRetries:  maxRetries,
		MaxResets:   maxResets,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// Terminal reports whether the record can make no further automatic progress.
func (r Record) Terminal() bool {
	return r.Status == StatusConfirmed || r.Status == StatusFailed
}

// Retried returns the record with one more attempt counted. Only pending
// records retry; exceeding MaxRetries is the caller's signal to fail the
// record.
func (r Record) Retried() (Record, error) {
	if r.Status != StatusPending {
		return Record{}, fmt.Errorf("cannot retry %s record %s", r.Status, r.ID)
	}
	if r.RetryCount >= r.MaxRetries {
		return Record{}, fmt.Errorf("%w: record %s exhausted %d retries",
			interfaces.ErrAnchorPermanent, r.ID, r.MaxRetries)
	}

	r.RetryCount++
	return r, nil
}

// Confirmed transitions pending to confirmed, storing the ledger's external
// reference. Confirmed is terminal.
func (r Record) Confirmed(ref interfaces.TxRef, at time.Time) (Record, error) {
	if r.Status != StatusPending {
		return Record{}, fmt.Errorf("cannot confirm %s record %s", r.Status, r.ID)
	}
	if _, err := interfaces.NewTxRef(ref.String()); err != nil {
		return Record{}, err
	}

	at = at.UTC()
	r.Status = StatusConfirmed
	r.ExternalRef = ref
	r.ConfirmedAt = &at
	return r, nil
}

// Failed transitions pending to failed after retry exhaustion.
func (r Record) Failed(at time.Time) (Record, error) {
	if r.Status != StatusPending {
		return Record{}, fmt.Errorf("cannot fail %s record %s", r.Status, r.ID)
	}

	at = at.UTC()
	r.Status = StatusFailed
	r.FailedAt = &at
	return r, nil
}

// Reset transitions failed back to pending for another round of submissions.
// Operator-triggered only, and bounded by MaxResets so a broken ledger cannot
// be resubmitted to forever.
func (r Record) Reset() (Record, error) {
	if r.Status != StatusFailed {
		return Record{}, fmt.Errorf("cannot reset %s record %s", r.Status, r.ID)
	}
	if r.ResetCount >= r.MaxResets {
		return Record{}, fmt.Errorf("%w: record %s exhausted %d resets",
			interfaces.ErrAnchorPermanent, r.ID, r.MaxResets)
	}

	r.Status = StatusPending
	r.ResetCount++
	r.RetryCount = 0
	r.FailedAt = nil
	return r, nil
}
