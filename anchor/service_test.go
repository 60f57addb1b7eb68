package anchor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
)

func testConfig() Config {
	return Config{
		MaxRetries:     3,
		MaxResets:      1,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
		SubmitTimeout:  time.Second,
		PollInterval:   time.Millisecond,
		PollTimeout:    time.Second,
	}
}

func TestService_AnchorConfirms(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	ledger.PendingPolls = 2
	store := NewMemoryStore()
	svc := NewService(ledger, store, testConfig(), nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityQuestion, ID: "Q1"}
	digest := interfaces.ComputeDigest([]byte("hashA"))

	record, err := svc.Anchor(ctx, entity, digest)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, record.Status)

	svc.Wait()

	final, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, final.Status)
	assert.NotEmpty(t, final.ExternalRef)
	assert.NotNil(t, final.ConfirmedAt)

	require.Len(t, ledger.Submitted(), 1)
	assert.True(t, ledger.Submitted()[0].Equal(digest))
}

func TestService_RetriesThenConfirms(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	ledger.FailSubmits = 2
	store := NewMemoryStore()
	svc := NewService(ledger, store, testConfig(), nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: "P1"}
	record, err := svc.Anchor(ctx, entity, interfaces.ComputeDigest([]byte("content")))
	require.NoError(t, err)

	svc.Wait()

	final, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, final.Status)
	assert.Equal(t, 2, final.RetryCount)
	assert.Equal(t, 3, ledger.SubmitCount())
}

func TestService_RetryExhaustionFailsPermanently(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	ledger.FailSubmits = 100
	store := NewMemoryStore()
	svc := NewService(ledger, store, testConfig(), nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: "P2"}
	record, err := svc.Anchor(ctx, entity, interfaces.ComputeDigest([]byte("content")))
	require.NoError(t, err)

	svc.Wait()

	final, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, final.Status)
	assert.Equal(t, final.MaxRetries, final.RetryCount)
	assert.NotNil(t, final.FailedAt)

	// No further attempts happen once the record is failed.
	attempts := ledger.SubmitCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, attempts, ledger.SubmitCount())
}

func TestService_SingleSubmissionInFlight(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	ledger.PendingPolls = 50
	store := NewMemoryStore()
	svc := NewService(ledger, store, testConfig(), nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityResult, ID: "R1"}
	digest := interfaces.ComputeDigest([]byte("result"))

	_, err := svc.Anchor(ctx, entity, digest)
	require.NoError(t, err)

	_, err = svc.Anchor(ctx, entity, digest)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// A different entity is unaffected.
	_, err = svc.Anchor(ctx, interfaces.EntityRef{Kind: interfaces.EntityResult, ID: "R2"}, digest)
	require.NoError(t, err)

	svc.Wait()

	// After settling, the entity can be anchored again.
	_, err = svc.Anchor(ctx, entity, digest)
	require.NoError(t, err)
	svc.Wait()
}

func TestService_ShutdownInterruptsBackoff(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	ledger.FailSubmits = 100
	cfg := testConfig()
	cfg.MaxRetries = 10
	cfg.RetryBaseDelay = time.Hour
	cfg.RetryMaxDelay = time.Hour
	store := NewMemoryStore()
	svc := NewService(ledger, store, cfg, nil, nil)

	record, err := svc.Anchor(ctx, interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: "P4"}, interfaces.ComputeDigest([]byte("content")))
	require.NoError(t, err)

	// Let the first attempt fail and enter its hour-long backoff.
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		svc.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not interrupt the retry backoff")
	}

	// The interrupted record is not failed; a restart can re-anchor it.
	final, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, final.Status)
}

func TestService_ReanchorAppendsHistory(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	store := NewMemoryStore()
	svc := NewService(ledger, store, testConfig(), nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityQuestion, ID: "Q9"}

	first, err := svc.Anchor(ctx, entity, interfaces.ComputeDigest([]byte("v1")))
	require.NoError(t, err)
	svc.Wait()

	second, err := svc.Anchor(ctx, entity, interfaces.ComputeDigest([]byte("v2")))
	require.NoError(t, err)
	svc.Wait()

	history, err := svc.History(ctx, entity)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
	assert.Equal(t, StatusConfirmed, history[0].Status)
	assert.Equal(t, StatusConfirmed, history[1].Status)

	latest, err := store.LatestConfirmed(ctx, entity)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestService_ResetResubmitsFailedRecord(t *testing.T) {
	ctx := context.Background()
	ledger := NewMockLedger()
	ledger.FailSubmits = 3 // exactly the retry budget
	store := NewMemoryStore()
	svc := NewService(ledger, store, testConfig(), nil, nil)

	entity := interfaces.EntityRef{Kind: interfaces.EntityPaper, ID: "P3"}
	record, err := svc.Anchor(ctx, entity, interfaces.ComputeDigest([]byte("content")))
	require.NoError(t, err)
	svc.Wait()

	failed, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, failed.Status)

	reset, err := svc.Reset(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reset.Status)
	assert.Equal(t, 1, reset.ResetCount)

	svc.Wait()

	final, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, final.Status)

	// The reset budget is spent; a second reset of a failed record would be
	// rejected, but this record confirmed so any reset attempt errors anyway.
	_, err = svc.Reset(ctx, record.ID)
	assert.Error(t, err)
}
