// Package shareledger tracks which custodian holds which share of a paper key
// and how many valid shares have been submitted back.
//
// Distribution assigns each share of a split to exactly one custodian.
// Submission validates a returned share against the recorded distribution,
// marks it used, and reports quorum progress. All operations on a paper are
// serialized through a per-paper lock, so two submitters can never
// double-count a share or race past the threshold check.
//
// Once quorum is reached and the paper is redeemed, further submissions are
// still accepted and recorded for audit, but redemption is idempotent and is
// never triggered twice.
//
// The ledger holds share references only; the shares themselves belong to
// their custodians and the reconstructed key never passes through this
// package.
package shareledger
