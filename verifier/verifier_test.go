package verifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/anchor"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

func confirmedAnchor(t *testing.T, store anchor.Store, entity interfaces.EntityRef, digest interfaces.Digest, at time.Time) anchor.Record {
	t.Helper()

	record, err := anchor.NewRecord(entity, digest, 3, 1)
	require.NoError(t, err)
	record.SubmittedAt = at
	require.NoError(t, store.Append(context.Background(), record))

	confirmed, err := record.Confirmed(interfaces.TxRef("0x"+digest.String()[:8]), at)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), confirmed))
	return confirmed
}

func TestVerify_MatchAndMismatch(t *testing.T) {
	ctx := context.Background()
	store := anchor.NewMemoryStore()
	v := New(store, nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityQuestion, ID: "Q1"}
	hashA := interfaces.ComputeDigest([]byte("hashA"))
	hashB := interfaces.ComputeDigest([]byte("hashB"))

	confirmedAnchor(t, store, entity, hashA, time.Now())

	result, err := v.Verify(ctx, entity, hashA)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	require.NotNil(t, result.Evidence)
	assert.True(t, result.Evidence.Digest.Equal(hashA))

	result, err = v.Verify(ctx, entity, hashB)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.NotNil(t, result.Evidence)
	assert.NotEmpty(t, result.Reason)
}

func TestVerify_NoConfirmedAnchor(t *testing.T) {
	ctx := context.Background()
	store := anchor.NewMemoryStore()
	v := New(store, nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: "P1"}
	digest := interfaces.ComputeDigest([]byte("content"))

	// No anchors at all: negative result, not an error.
	result, err := v.Verify(ctx, entity, digest)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Nil(t, result.Evidence)

	// A pending anchor is not trusted either.
	record, err := anchor.NewRecord(entity, digest, 3, 1)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, record))

	result, err = v.Verify(ctx, entity, digest)
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestVerify_LatestConfirmedWins(t *testing.T) {
	ctx := context.Background()
	store := anchor.NewMemoryStore()
	v := New(store, nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityQuestion, ID: "Q2"}
	oldDigest := interfaces.ComputeDigest([]byte("v1"))
	newDigest := interfaces.ComputeDigest([]byte("v2"))

	confirmedAnchor(t, store, entity, oldDigest, time.Now().Add(-time.Hour))
	confirmedAnchor(t, store, entity, newDigest, time.Now())

	result, err := v.Verify(ctx, entity, newDigest)
	require.NoError(t, err)
	assert.True(t, result.Verified)

	// The superseded digest no longer verifies.
	result, err = v.Verify(ctx, entity, oldDigest)
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestVerify_InvalidEntity(t *testing.T) {
	v := New(anchor.NewMemoryStore(), nil, nil)
	_, err := v.Verify(context.Background(), interfaces.EntityRef{}, interfaces.Digest{})
	assert.Error(t, err)
}

func TestCanonicalDigests(t *testing.T) {
	paper := PaperSnapshot{
		PaperID: "PAPER-2026-MATH-01",
		Subject: "mathematics",
		Version: 2,
		Content: []byte("paper content"),
	}

	// Deterministic across calls.
	assert.True(t, paper.Digest().Equal(paper.Digest()))

	// Any field change moves the digest.
	changed := paper
	changed.Version = 3
	assert.False(t, paper.Digest().Equal(changed.Digest()))

	// Adjacent string fields do not collide when content shifts between them.
	q1 := QuestionSnapshot{QuestionID: "ab", PaperID: "c", Text: "t"}
	q2 := QuestionSnapshot{QuestionID: "a", PaperID: "bc", Text: "t"}
	assert.False(t, q1.Digest().Equal(q2.Digest()))

	// Different entity kinds never share digests even with similar content.
	result := ResultSnapshot{ResultID: "ab", PaperID: "c", CandidateID: "t"}
	assert.False(t, q1.Digest().Equal(result.Digest()))

	assert.Equal(t, interfaces.EntityPaper, paper.Entity().Kind)
	assert.Equal(t, interfaces.EntityQuestion, q1.Entity().Kind)
	assert.Equal(t, interfaces.EntityResult, result.Entity().Kind)
}
