// Package secretshare splits and reconstructs paper keys with Shamir's Secret
// Sharing.
//
// A paper key is split into N shares under a T-of-N threshold policy. Any T
// shares reconstruct the key; any smaller set reveals nothing beyond the key's
// length. Each split is tagged with a session identifier carried alongside
// every share, making accidental mixing of shares from different splits a
// detectable error instead of silent garbage.
//
// Both operations are pure and stateless; they may be called concurrently for
// different papers. Share bookkeeping (who holds what, what has been
// submitted) belongs to the shareledger package.
package secretshare
