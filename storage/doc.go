// Package storage provides content-addressed storage backends for sealed
// paper payloads and audit snapshots.
//
// Content is identified by the SHA-256 hash of its bytes, so every backend
// stores and serves the same ID for the same data. Backends are created from
// location URIs by the factory:
//
//   - file:///var/lib/papervault - local filesystem
//   - s3://bucket/prefix?region=ap-south-1 - S3 or compatible object storage
//   - ipfs://127.0.0.1:5001 - IPFS node
//   - vault://vault.example.com:8200/secret/papers?token=... - HashiCorp Vault KV
//   - memory:// - in-process, for tests and development
//
// MultiStorageBackend aggregates several backends for redundancy: stores go
// to every available backend, fetches return from the first that has the
// content.
package storage
