package anchor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/metrics"
)

// ErrSubmissionInFlight is returned when an anchor is requested for an entity
// that already has a pending submission racing to confirm.
var ErrSubmissionInFlight = fmt.Errorf("anchor submission already in flight")

// Config tunes the retry and confirmation behavior of the anchor service.
type Config struct {
	// MaxRetries bounds consecutive transient failures before a record fails.
	MaxRetries int
	// MaxResets bounds operator resets of a failed record.
	MaxResets int
	// RetryBaseDelay is the initial backoff delay, doubled per attempt.
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration
	// SubmitTimeout bounds a single ledger submission attempt.
	SubmitTimeout time.Duration
	// PollInterval is the delay between confirmation polls.
	PollInterval time.Duration
	// PollTimeout bounds how long a submission may stay pending on the ledger
	// before the attempt is treated as a transient failure.
	PollTimeout time.Duration
}

// DefaultConfig returns the retry policy used in production.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     5,
		MaxResets:      3,
		RetryBaseDelay: 2 * time.Second,
		RetryMaxDelay:  60 * time.Second,
		SubmitTimeout:  30 * time.Second,
		PollInterval:   5 * time.Second,
		PollTimeout:    3 * time.Minute,
	}
}

// Service anchors entity digests on the external integrity ledger. Anchoring
// is asynchronous: Anchor appends a pending record and returns immediately
// while a background goroutine submits, polls for confirmation, and retries
// transient failures with exponential backoff. At most one submission per
// entity is in flight at a time.
type Service struct {
	ledger  interfaces.IntegrityLedger
	store   Store
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// NewService creates an anchor service. The metrics argument may be nil.
func NewService(ledger interfaces.IntegrityLedger, store Store, cfg Config, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		ledger:   ledger,
		store:    store,
		cfg:      cfg,
		log:      log,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]bool),
	}
}

// Anchor creates a pending record for the digest and submits it to the ledger
// asynchronously. Anchoring the same entity again appends a new record rather
// than mutating history. Returns ErrSubmissionInFlight while a previous
// submission for the entity is still racing to confirm.
func (s *Service) Anchor(ctx context.Context, entity interfaces.EntityRef, digest interfaces.Digest) (Record, error) {
	record, err := NewRecord(entity, digest, s.cfg.MaxRetries, s.cfg.MaxResets)
	if err != nil {
		return Record{}, err
	}

	if !s.acquire(entity) {
		return Record{}, fmt.Errorf("%w: %s", ErrSubmissionInFlight, entity)
	}

	if err := s.store.Append(ctx, record); err != nil {
		s.release(entity)
		return Record{}, fmt.Errorf("failed to append anchor record: %w", err)
	}

	s.wg.Add(1)
	go s.submitLoop(record)

	s.log.Info("Anchor submission scheduled",
		slog.String("record_id", record.ID),
		slog.String("entity", entity.String()),
		slog.String("digest", digest.String()))

	return record, nil
}

// Confirm transitions a pending record to confirmed with the ledger's
// external reference. Confirmed is terminal.
func (s *Service) Confirm(ctx context.Context, recordID string, ref interfaces.TxRef) (Record, error) {
	record, err := s.store.Get(ctx, recordID)
	if err != nil {
		return Record{}, err
	}

	confirmed, err := record.Confirmed(ref, time.Now())
	if err != nil {
		return Record{}, err
	}

	if err := s.store.Save(ctx, confirmed); err != nil {
		return Record{}, fmt.Errorf("failed to save confirmed record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AnchorsConfirmed.Inc()
	}
	s.log.Info("Anchor confirmed",
		slog.String("record_id", confirmed.ID),
		slog.String("entity", confirmed.Entity.String()),
		slog.String("external_ref", ref.String()))

	return confirmed, nil
}

// Reset transitions a failed record back to pending and resubmits it.
// Operator-triggered; bounded by the record's reset ceiling.
func (s *Service) Reset(ctx context.Context, recordID string) (Record, error) {
	record, err := s.store.Get(ctx, recordID)
	if err != nil {
		return Record{}, err
	}

	reset, err := record.Reset()
	if err != nil {
		return Record{}, err
	}

	if !s.acquire(reset.Entity) {
		return Record{}, fmt.Errorf("%w: %s", ErrSubmissionInFlight, reset.Entity)
	}

	if err := s.store.Save(ctx, reset); err != nil {
		s.release(reset.Entity)
		return Record{}, fmt.Errorf("failed to save reset record: %w", err)
	}

	s.wg.Add(1)
	go s.submitLoop(reset)

	s.log.Info("Anchor reset and resubmitted",
		slog.String("record_id", reset.ID),
		slog.Int("reset_count", reset.ResetCount))

	return reset, nil
}

// History returns the append-only anchor history for an entity, oldest first.
func (s *Service) History(ctx context.Context, entity interfaces.EntityRef) ([]Record, error) {
	return s.store.History(ctx, entity)
}

// Wait blocks until all in-flight submissions have settled. Used by tests to
// drain submissions naturally.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Shutdown interrupts backoff and poll waits and waits for all submission
// goroutines to exit. Interrupted records stay pending in the store; a
// restart can re-anchor them.
func (s *Service) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) acquire(entity interfaces.EntityRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entity.String()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Service) release(entity interfaces.EntityRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, entity.String())
}

// submitLoop drives one record to a terminal state. Transient failures
// (network errors, timeouts, ledger rejections) are retried with exponential
// backoff; exhausting the retry budget fails the record permanently.
func (s *Service) submitLoop(record Record) {
	defer s.wg.Done()
	defer s.release(record.Entity)

	ctx := s.ctx
	delay := s.cfg.RetryBaseDelay

	for {
		err := s.attempt(ctx, &record)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			s.log.Info("Anchor submission interrupted by shutdown",
				slog.String("record_id", record.ID))
			return
		}

		retried, rerr := record.Retried()
		if rerr != nil {
			s.fail(ctx, record, err)
			return
		}
		record = retried

		if serr := s.store.Save(ctx, record); serr != nil {
			s.log.Error("Failed to save retried anchor record", "err", serr,
				slog.String("record_id", record.ID))
		}
		if s.metrics != nil {
			s.metrics.AnchorRetries.Inc()
		}

		s.log.Warn("Anchor submission failed, will retry",
			slog.String("record_id", record.ID),
			slog.String("entity", record.Entity.String()),
			slog.Int("retry_count", record.RetryCount),
			slog.Int("max_retries", record.MaxRetries),
			"err", err)

		if record.RetryCount >= record.MaxRetries {
			s.fail(ctx, record, err)
			return
		}

		if !s.sleep(delay) {
			s.log.Info("Anchor submission interrupted by shutdown",
				slog.String("record_id", record.ID))
			return
		}
		delay *= 2
		if delay > s.cfg.RetryMaxDelay {
			delay = s.cfg.RetryMaxDelay
		}
	}
}

// sleep waits for d unless the service is shut down first.
func (s *Service) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// attempt performs one submission plus confirmation poll. Any error returned
// is transient from the state machine's point of view.
func (s *Service) attempt(ctx context.Context, record *Record) error {
	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	ref, err := s.ledger.Submit(submitCtx, record.Digest)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrAnchorTransient, err)
	}

	return s.awaitConfirmation(ctx, record, ref)
}

// awaitConfirmation polls the ledger until the submission confirms, fails, or
// the poll budget runs out. A submission stuck pending past the budget is
// treated as transient and resubmitted.
func (s *Service) awaitConfirmation(ctx context.Context, record *Record, ref interfaces.TxRef) error {
	deadline := time.Now().Add(s.cfg.PollTimeout)

	for {
		pollCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
		status, err := s.ledger.Poll(pollCtx, ref)
		cancel()

		switch {
		case err != nil:
			return fmt.Errorf("%w: poll: %v", interfaces.ErrAnchorTransient, err)
		case status == interfaces.LedgerConfirmed:
			confirmed, err := s.Confirm(ctx, record.ID, ref)
			if err != nil {
				return fmt.Errorf("%w: confirm: %v", interfaces.ErrAnchorTransient, err)
			}
			*record = confirmed
			return nil
		case status == interfaces.LedgerFailed:
			return fmt.Errorf("%w: ledger rejected submission %s", interfaces.ErrAnchorTransient, ref)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %s still pending after %s",
				interfaces.ErrAnchorTransient, ref, s.cfg.PollTimeout)
		}
		if !s.sleep(s.cfg.PollInterval) {
			return fmt.Errorf("%w: %v", interfaces.ErrAnchorTransient, ctx.Err())
		}
	}
}

// fail marks a record permanently failed after retry exhaustion. The failure
// is surfaced through the store, the log, and metrics; no further automatic
// retries happen.
func (s *Service) fail(ctx context.Context, record Record, cause error) {
	failed, err := record.Failed(time.Now())
	if err != nil {
		s.log.Error("Failed to transition anchor record to failed", "err", err,
			slog.String("record_id", record.ID))
		return
	}

	if err := s.store.Save(ctx, failed); err != nil {
		s.log.Error("Failed to save failed anchor record", "err", err,
			slog.String("record_id", failed.ID))
	}

	if s.metrics != nil {
		s.metrics.AnchorsFailed.Inc()
	}

	s.log.Error("Anchor submission permanently failed",
		slog.String("record_id", failed.ID),
		slog.String("entity", failed.Entity.String()),
		slog.Int("retry_count", failed.RetryCount),
		"err", fmt.Errorf("%w: %v", interfaces.ErrAnchorPermanent, cause))
}
