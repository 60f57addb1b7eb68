// Package interfaces defines the core interfaces and types for the exam paper
// vault.
//
// This package provides the contracts between different components of the
// system without including implementation details. It separates the interface
// definitions from their implementations, allowing for:
//
//   - Clear separation of concerns
//   - Multiple implementations of the same interface
//   - Better testability through mock implementations
//   - Reduced coupling between components
//
// # Ledger Interfaces
//
//   - IntegrityLedger: The narrow submit/poll contract of the external
//     integrity ledger used for hash anchoring
//
// # Storage Interfaces
//
//   - StorageBackend: Represents any system that can store and retrieve
//     content-addressed data (sealed payloads, audit snapshots)
//   - StorageBackendFactory: Creates storage backends from URI strings
//
// # Type Definitions
//
// The package defines various types used throughout the system:
//
//   - PaperID/CustodianID: Identifiers for papers and share holders
//   - ThresholdPolicy: T-of-N split policy with validation
//   - Share: One fragment of a split paper key, tied to its split session
//   - EncryptedPayload: AES-GCM sealed paper content
//   - Digest: A 32-byte SHA-256 digest of canonical entity state
//   - EntityRef/EntityKind: Anchored entity identification
//   - ContentID/ContentType: Content-addressed storage identifiers
//
// # Error Types
//
// The full error taxonomy of the vault lives here so every component reports
// failures through the same sentinels: policy and share validation errors,
// cipher authentication failures, transient and permanent ledger errors, and
// storage errors.
package interfaces
