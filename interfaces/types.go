// Package interfaces defines the core types and component contracts for the
// exam paper vault. It provides the contract between different components
// without implementation details.
package interfaces

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MaxTotalShares bounds how many custodians a single paper key may be split
// across. Policies beyond this are rejected as invalid.
const MaxTotalShares = 20

// PaperID identifies an exam paper.
type PaperID string

var paperIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

// NewPaperID creates a paper identifier with validation.
func NewPaperID(id string) (PaperID, error) {
	if !paperIDRegex.MatchString(id) {
		return PaperID(""), errors.New("invalid paper id format")
	}
	return PaperID(id), nil
}

// String returns the paper id as a string.
func (id PaperID) String() string {
	return string(id)
}

// Validate checks if the paper id has a valid format.
func (id PaperID) Validate() error {
	_, err := NewPaperID(string(id))
	return err
}

// CustodianID identifies the party holding one share of a split paper key.
type CustodianID string

// String returns the custodian id as a string.
func (c CustodianID) String() string {
	return string(c)
}

// Validate checks the custodian identity is non-empty.
func (c CustodianID) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return errors.New("empty custodian id")
	}
	return nil
}

// EntityKind names the kind of entity a digest is anchored for.
type EntityKind string

const (
	// EntityPaper anchors the canonical state of an exam paper.
	EntityPaper EntityKind = "paper"
	// EntityQuestion anchors the canonical state of a single question.
	EntityQuestion EntityKind = "question"
	// EntityResult anchors published result state.
	EntityResult EntityKind = "result"
)

// Validate checks the entity kind is one of the known values.
func (k EntityKind) Validate() error {
	switch k {
	case EntityPaper, EntityQuestion, EntityResult:
		return nil
	default:
		return fmt.Errorf("unknown entity kind: %s", k)
	}
}

// String returns the kind name.
func (k EntityKind) String() string {
	return string(k)
}

// EntityRef identifies an anchored entity by kind and id.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// String returns kind/id, used as a map key and in logs.
func (r EntityRef) String() string {
	return string(r.Kind) + "/" + r.ID
}

// Validate checks both the kind and the id.
func (r EntityRef) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		return errors.New("empty entity id")
	}
	return nil
}

// Digest is a 32-byte SHA-256 digest of canonical entity state.
type Digest [32]byte

// NewDigestFromBytes creates a digest from a raw 32-byte slice.
func NewDigestFromBytes(source []byte) (Digest, error) {
	if len(source) != 32 {
		return Digest{}, errors.New("invalid digest length: must be 32 bytes")
	}

	var d Digest
	copy(d[:], source)
	return d, nil
}

// NewDigestFromHex creates a digest from a 64-character hex string.
func NewDigestFromHex(source string) (Digest, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return Digest{}, errors.New("invalid digest length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewDigestFromBytes(raw)
}

// String returns hex representation.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns the raw 32-byte digest.
func (d Digest) Bytes() []byte {
	return d[:]
}

// Equal compares two digests.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d[:], other[:])
}

// ComputeDigest hashes raw content with SHA-256.
func ComputeDigest(content []byte) Digest {
	return Digest(sha256.Sum256(content))
}

// ThresholdPolicy describes how a paper key is split across custodians.
type ThresholdPolicy struct {
	// Threshold is the minimum number of shares required to reconstruct the key.
	Threshold int
	// TotalShares is the number of shares produced by a split.
	TotalShares int
}

// Validate enforces 2 <= Threshold <= TotalShares <= MaxTotalShares.
func (p ThresholdPolicy) Validate() error {
	if p.Threshold < 2 {
		return fmt.Errorf("%w: threshold must be at least 2", ErrInvalidPolicy)
	}
	if p.Threshold > p.TotalShares {
		return fmt.Errorf("%w: threshold %d exceeds total shares %d", ErrInvalidPolicy, p.Threshold, p.TotalShares)
	}
	if p.TotalShares > MaxTotalShares {
		return fmt.Errorf("%w: total shares %d exceeds maximum %d", ErrInvalidPolicy, p.TotalShares, MaxTotalShares)
	}
	return nil
}

// Share is one fragment of a split paper key. The SplitID ties a share to the
// split that produced it so shares from different splits cannot be combined.
type Share struct {
	Index         int         `json:"index"`
	Value         []byte      `json:"value"`
	SplitID       string      `json:"split_id"`
	Holder        CustodianID `json:"holder,omitempty"`
	DistributedAt time.Time   `json:"distributed_at,omitempty"`
	Used          bool        `json:"used"`
}

// QuorumState reports share collection progress for a paper.
type QuorumState struct {
	PaperID   PaperID `json:"paper_id"`
	Submitted int     `json:"submitted"`
	Threshold int     `json:"threshold"`
	Reached   bool    `json:"reached"`
	Redeemed  bool    `json:"redeemed"`
}

// EncryptedPayload holds an AES-GCM sealed paper. Immutable after creation.
type EncryptedPayload struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	Tag        []byte `json:"tag"`
}
