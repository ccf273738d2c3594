// Package scheduler drives recurring ranking checks. One Scheduler owns one
// timer and one run guard; there is no distributed coordination and no
// backlog: a trigger that arrives while a run is in progress is a no-op.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"serptrack/internal/metrics"
	"serptrack/internal/models"
)

// ErrRunInProgress is returned when a run is triggered while another run
// holds the guard. The trigger is dropped, never queued.
var ErrRunInProgress = errors.New("a ranking check run is already in progress")

// KeywordSource supplies the keywords a run operates on. Only keywords whose
// keyword and domain are both active are returned.
type KeywordSource interface {
	GetActiveKeywordsWithDomain(ctx context.Context) ([]models.KeywordWithDomain, error)
	GetActiveKeywordsWithDomainByUser(ctx context.Context, userID uuid.UUID) ([]models.KeywordWithDomain, error)
}

// BatchChecker processes one batch of keywords end to end (check, persist,
// diff, notify).
type BatchChecker interface {
	CheckKeywordBatch(ctx context.Context, pairs []models.KeywordWithDomain) error
}

// Config carries the scheduler knobs.
type Config struct {
	Interval         time.Duration
	BatchSize        int
	ManualBatchSize  int
	BatchDelay       time.Duration
	ManualBatchDelay time.Duration
}

// Scheduler owns the periodic check timer and the single run guard.
type Scheduler struct {
	keywords KeywordSource
	checker  BatchChecker
	cfg      Config
	log      *slog.Logger

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	// injectable for deterministic tests
	sleep     func(time.Duration)
	newTicker func(time.Duration) *time.Ticker
}

// New creates a scheduler; Start arms it.
func New(keywords KeywordSource, checker BatchChecker, cfg Config, log *slog.Logger) *Scheduler {
	return &Scheduler{
		keywords:  keywords,
		checker:   checker,
		cfg:       cfg,
		log:       log,
		stop:      make(chan struct{}),
		sleep:     time.Sleep,
		newTicker: time.NewTicker,
	}
}

// Start runs a pass immediately, then re-arms on the configured interval.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "interval", s.cfg.Interval, "batch_size", s.cfg.BatchSize)
	go s.loop()
}

// Stop prevents future timer fires. An in-flight run is allowed to complete.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) loop() {
	ctx := context.Background()

	if err := s.RunAll(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		s.log.Error("scheduled run failed", "error", err)
	}

	ticker := s.newTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunAll(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
				s.log.Error("scheduled run failed", "error", err)
			}
		}
	}
}

// RunAll executes one scheduled pass over every active keyword.
func (s *Scheduler) RunAll(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	pairs, err := s.keywords.GetActiveKeywordsWithDomain(ctx)
	if err != nil {
		return err
	}

	metrics.RecordSchedulerRun("scheduled")
	s.log.Info("starting scheduled run", "keywords", len(pairs))
	s.runBatches(ctx, pairs, s.cfg.BatchSize, s.cfg.BatchDelay)
	return nil
}

// RunUser executes one manual pass over a single user's active keywords,
// with the smaller manual batch size. It shares the run guard with the
// scheduled pass.
func (s *Scheduler) RunUser(ctx context.Context, userID uuid.UUID) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	pairs, err := s.keywords.GetActiveKeywordsWithDomainByUser(ctx, userID)
	if err != nil {
		return err
	}

	metrics.RecordSchedulerRun("manual")
	s.log.Info("starting manual run", "user_id", userID, "keywords", len(pairs))
	s.runBatches(ctx, pairs, s.cfg.ManualBatchSize, s.cfg.ManualBatchDelay)
	return nil
}

// StartUserRun acquires the guard and runs a manual pass in the background,
// so an HTTP handler can reject overlapping triggers synchronously without
// blocking on the run itself.
func (s *Scheduler) StartUserRun(userID uuid.UUID) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	go func() {
		defer s.running.Store(false)

		ctx := context.Background()
		pairs, err := s.keywords.GetActiveKeywordsWithDomainByUser(ctx, userID)
		if err != nil {
			s.log.Error("manual run failed to load keywords", "user_id", userID, "error", err)
			return
		}
		metrics.RecordSchedulerRun("manual")
		s.log.Info("starting manual run", "user_id", userID, "keywords", len(pairs))
		s.runBatches(ctx, pairs, s.cfg.ManualBatchSize, s.cfg.ManualBatchDelay)
	}()
	return nil
}

// runBatches processes batches sequentially. A failing batch is logged and
// the pass moves on; the inter-batch delay keeps the upstream provider happy
// and is not a correctness requirement.
func (s *Scheduler) runBatches(ctx context.Context, pairs []models.KeywordWithDomain, batchSize int, delay time.Duration) {
	batches := partition(pairs, batchSize)
	for i, batch := range batches {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			s.sleep(delay)
		}
		if err := s.checker.CheckKeywordBatch(ctx, batch); err != nil {
			s.log.Error("batch failed", "batch", i+1, "of", len(batches), "error", err)
		}
	}
}

// partition splits pairs into fixed-size batches, the last one possibly
// short.
func partition(pairs []models.KeywordWithDomain, size int) [][]models.KeywordWithDomain {
	if size <= 0 {
		size = 1
	}
	var batches [][]models.KeywordWithDomain
	for start := 0; start < len(pairs); start += size {
		end := start + size
		if end > len(pairs) {
			end = len(pairs)
		}
		batches = append(batches, pairs[start:end])
	}
	return batches
}
