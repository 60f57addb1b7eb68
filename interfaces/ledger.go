package interfaces

import (
	"context"
	"errors"
	"strings"
)

// TxRef is the external ledger's reference for a submitted digest, typically a
// transaction hash. It is opaque to the core and only passed back to Poll.
type TxRef string

// NewTxRef validates an external reference string.
func NewTxRef(ref string) (TxRef, error) {
	if strings.TrimSpace(ref) == "" {
		return TxRef(""), errors.New("empty transaction reference")
	}
	return TxRef(ref), nil
}

// String returns the reference as a string.
func (r TxRef) String() string {
	return string(r)
}

// LedgerStatus is the ledger's view of a submitted digest.
type LedgerStatus int

const (
	// LedgerPending means the submission is not yet included.
	LedgerPending LedgerStatus = iota
	// LedgerConfirmed means the ledger acknowledged the digest.
	LedgerConfirmed
	// LedgerFailed means the ledger rejected the submission.
	LedgerFailed
)

// String returns the status name.
func (s LedgerStatus) String() string {
	switch s {
	case LedgerPending:
		return "pending"
	case LedgerConfirmed:
		return "confirmed"
	case LedgerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IntegrityLedger is the narrow client-facing contract of the external
// integrity ledger. The core depends only on this interface, never on the
// ledger's wire protocol. Implementations must honor context deadlines;
// a timeout is reported as a transient error.
type IntegrityLedger interface {
	// Submit records a digest on the ledger and returns a pending reference.
	Submit(ctx context.Context, digest Digest) (TxRef, error)

	// Poll reports the current status of an earlier submission.
	Poll(ctx context.Context, ref TxRef) (LedgerStatus, error)

	// Name returns identifier for logging.
	Name() string
}
