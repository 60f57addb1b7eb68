// Package anchor records entity digests on an external integrity ledger.
//
// Each anchoring attempt is a Record moving through pending, confirmed, or
// failed. Transitions produce new record values; confirmed and failed are
// terminal, except that an operator may reset a failed record back to pending
// a bounded number of times. History per entity is append-only and the latest
// confirmed record is what verification trusts.
//
// The Service performs submission asynchronously with exponential backoff on
// transient failures and keeps at most one submission per entity in flight.
// The ledger itself is abstracted behind interfaces.IntegrityLedger, with an
// Ethereum implementation in ethledger and an in-process MockLedger for tests
// and development.
package anchor
