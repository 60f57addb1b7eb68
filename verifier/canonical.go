package verifier

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

// Snapshots are the canonical forms of entity state used for digesting. Field
// order is fixed and every field is length-prefixed before hashing, so the
// digest of a snapshot is stable across processes and releases. Changing a
// snapshot's fields is a breaking change to all previously anchored digests.

// PaperSnapshot is the canonical state of an exam paper.
type PaperSnapshot struct {
	PaperID interfaces.PaperID `json:"paper_id"`
	Subject string             `json:"subject"`
	Version int                `json:"version"`
	Content []byte             `json:"content"`
}

// Digest hashes the snapshot canonically.
func (s PaperSnapshot) Digest() interfaces.Digest {
	h := newCanonicalHash("paper")
	h.writeField([]byte(s.PaperID))
	h.writeField([]byte(s.Subject))
	h.writeInt(s.Version)
	h.writeField(s.Content)
	return h.sum()
}

// Entity returns the entity reference this snapshot anchors under.
func (s PaperSnapshot) Entity() interfaces.EntityRef {
	return interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: string(s.PaperID)}
}

// QuestionSnapshot is the canonical state of a single question.
type QuestionSnapshot struct {
	QuestionID string             `json:"question_id"`
	PaperID    interfaces.PaperID `json:"paper_id"`
	Position   int                `json:"position"`
	Text       string             `json:"text"`
	Options    []string           `json:"options"`
	Answer     string             `json:"answer"`
}

// Digest hashes the snapshot canonically.
func (s QuestionSnapshot) Digest() interfaces.Digest {
	h := newCanonicalHash("question")
	h.writeField([]byte(s.QuestionID))
	h.writeField([]byte(s.PaperID))
	h.writeInt(s.Position)
	h.writeField([]byte(s.Text))
	h.writeInt(len(s.Options))
	for _, opt := range s.Options {
		h.writeField([]byte(opt))
	}
	h.writeField([]byte(s.Answer))
	return h.sum()
}

// Entity returns the entity reference this snapshot anchors under.
func (s QuestionSnapshot) Entity() interfaces.EntityRef {
	return interfaces.EntityRef{Kind: interfaces.EntityQuestion, ID: s.QuestionID}
}

// ResultSnapshot is the canonical state of a published result.
type ResultSnapshot struct {
	ResultID    string             `json:"result_id"`
	PaperID     interfaces.PaperID `json:"paper_id"`
	CandidateID string             `json:"candidate_id"`
	Score       int                `json:"score"`
}

// Digest hashes the snapshot canonically.
func (s ResultSnapshot) Digest() interfaces.Digest {
	h := newCanonicalHash("result")
	h.writeField([]byte(s.ResultID))
	h.writeField([]byte(s.PaperID))
	h.writeField([]byte(s.CandidateID))
	h.writeInt(s.Score)
	return h.sum()
}

// Entity returns the entity reference this snapshot anchors under.
func (s ResultSnapshot) Entity() interfaces.EntityRef {
	return interfaces.EntityRef{Kind: interfaces.EntityResult, ID: s.ResultID}
}

// canonicalHash length-prefixes every field so that adjacent fields can never
// collide ("ab","c" vs "a","bc"). The domain tag separates entity kinds that
// happen to share field layouts.
type canonicalHash struct {
	inner hash.Hash
}

func newCanonicalHash(domain string) *canonicalHash {
	h := &canonicalHash{inner: sha256.New()}
	h.writeField([]byte(domain))
	return h
}

func (h *canonicalHash) writeField(field []byte) {
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(field)))
	h.inner.Write(prefix[:])
	h.inner.Write(field)
}

func (h *canonicalHash) writeInt(v int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.inner.Write(buf[:])
}

func (h *canonicalHash) sum() interfaces.Digest {
	var d interfaces.Digest
	copy(d[:], h.inner.Sum(nil))
	return d
}
