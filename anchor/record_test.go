package anchor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

func testEntity(t *testing.T) interfaces.EntityRef {
	t.Helper()
	return interfaces.EntityRef{Kind: interfaces.EntityQuestion, ID: "Q1"}
}

func testDigest(t *testing.T, content string) interfaces.Digest {
	t.Helper()
	return interfaces.ComputeDigest([]byte(content))
}

func TestNewRecord(t *testing.T) {
	record, err := NewRecord(testEntity(t), testDigest(t, "hashA"), 3, 1)
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, StatusPending, record.Status)
	assert.Zero(t, record.RetryCount)
	assert.False(t, record.Terminal())
	assert.Nil(t, record.ConfirmedAt)

	_, err = NewRecord(interfaces.EntityRef{}, testDigest(t, "x"), 3, 1)
	assert.Error(t, err)

	_, err = NewRecord(testEntity(t), testDigest(t, "x"), 0, 1)
	assert.Error(t, err)
}

func TestRecord_ConfirmTransition(t *testing.T) {
	record, err := NewRecord(testEntity(t), testDigest(t, "hashA"), 3, 1)
	require.NoError(t, err)

	now := time.Now()
	confirmed, err := record.Confirmed(interfaces.TxRef("0xabc"), now)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Equal(t, interfaces.TxRef("0xabc"), confirmed.ExternalRef)
	assert.True(t, confirmed.Terminal())
	require.NotNil(t, confirmed.ConfirmedAt)

	// The original value is untouched.
	assert.Equal(t, StatusPending, record.Status)

	// Confirmed is terminal: no further transitions.
	_, err = confirmed.Confirmed(interfaces.TxRef("0xdef"), now)
	assert.Error(t, err)
	_, err = confirmed.Failed(now)
	assert.Error(t, err)
	_, err = confirmed.Retried()
	assert.Error(t, err)
	_, err = confirmed.Reset()
	assert.Error(t, err)
}

func TestRecord_RetryExhaustion(t *testing.T) {
	record, err := NewRecord(testEntity(t), testDigest(t, "hashA"), 2, 1)
	require.NoError(t, err)

	record, err = record.Retried()
	require.NoError(t, err)
	assert.Equal(t, 1, record.RetryCount)

	record, err = record.Retried()
	require.NoError(t, err)
	assert.Equal(t, 2, record.RetryCount)

	_, err = record.Retried()
	assert.ErrorIs(t, err, interfaces.ErrAnchorPermanent)

	failed, err := record.Failed(time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.True(t, failed.Terminal())
	require.NotNil(t, failed.FailedAt)
}

func TestRecord_ResetBounded(t *testing.T) {
	record, err := NewRecord(testEntity(t), testDigest(t, "hashA"), 1, 1)
	require.NoError(t, err)

	// Pending records cannot be reset.
	_, err = record.Reset()
	assert.Error(t, err)

	failed, err := record.Failed(time.Now())
	require.NoError(t, err)

	reset, err := failed.Reset()
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reset.Status)
	assert.Equal(t, 1, reset.ResetCount)
	assert.Zero(t, reset.RetryCount)
	assert.Nil(t, reset.FailedAt)

	failedAgain, err := reset.Failed(time.Now())
	require.NoError(t, err)

	_, err = failedAgain.Reset()
	assert.ErrorIs(t, err, interfaces.ErrAnchorPermanent)
}

func TestMemoryStore_HistoryAppendOnly(t *testing.T) {
	store := NewMemoryStore()
	entity := testEntity(t)

	first, err := NewRecord(entity, testDigest(t, "hashA"), 3, 1)
	require.NoError(t, err)
	first.SubmittedAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Append(context.Background(), first))

	second, err := NewRecord(entity, testDigest(t, "hashB"), 3, 1)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), second))

	confirmed, err := first.Confirmed(interfaces.TxRef("0x1"), time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), confirmed))

	history, err := store.History(context.Background(), entity)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
	assert.Equal(t, StatusConfirmed, history[0].Status)

	latest, err := store.LatestConfirmed(context.Background(), entity)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)

	// No confirmed record for a different entity.
	_, err = store.LatestConfirmed(context.Background(), interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: "P1"})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}
