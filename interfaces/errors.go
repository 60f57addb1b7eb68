package interfaces

import "errors"

var (
	// ErrInvalidPolicy is returned when a threshold policy is malformed or a
	// split is attempted with an empty secret.
	ErrInvalidPolicy = errors.New("invalid threshold policy")

	// ErrInsufficientShares is returned when fewer shares than the threshold
	// are provided for reconstruction.
	ErrInsufficientShares = errors.New("insufficient shares for reconstruction")

	// ErrInconsistentShares is returned when shares from different splits are
	// mixed in a single reconstruction attempt.
	ErrInconsistentShares = errors.New("shares belong to different splits")

	// ErrShareAlreadyDistributed is returned when a share index is re-assigned
	// to a different custodian.
	ErrShareAlreadyDistributed = errors.New("share already distributed")

	// ErrShareAlreadyUsed is returned when an already-submitted share is
	// replayed.
	ErrShareAlreadyUsed = errors.New("share already used")

	// ErrInvalidKeyLength is returned when a key does not match the cipher's
	// required size.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrAuthenticationFailure is returned when an authentication tag does not
	// verify. No plaintext is ever released alongside this error.
	ErrAuthenticationFailure = errors.New("payload authentication failure")

	// ErrAnchorTransient marks a ledger submission failure that is safe to
	// retry (network errors, timeouts).
	ErrAnchorTransient = errors.New("transient ledger failure")

	// ErrAnchorPermanent marks an anchor whose retries are exhausted. The
	// record is terminal unless explicitly reset by an operator.
	ErrAnchorPermanent = errors.New("permanent ledger failure")

	// ErrNotFound is returned when a paper, share distribution, or anchor
	// record does not exist.
	ErrNotFound = errors.New("not found")
)
