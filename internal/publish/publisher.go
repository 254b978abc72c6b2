// Package publish delivers assessment records asynchronously. Records are
// queued without blocking the caller, grouped into batches by size or age,
// and written with exponential backoff. A full queue drops records.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
)

// BatchLoader writes multiple records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.AssessmentRecord) error
}

// Options tunes batching and retry.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int

	// Retry schedule for a failed batch: starts at RetryInitial, doubles up
	// to RetryMax, and gives up after RetryElapsed.
	RetryInitial time.Duration
	RetryMax     time.Duration
	RetryElapsed time.Duration

	// DrainTimeout bounds the final flush after Run's context ends.
	DrainTimeout time.Duration

	Clock clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1000
	}
	if o.RetryInitial <= 0 {
		o.RetryInitial = 200 * time.Millisecond
	}
	if o.RetryMax <= 0 {
		o.RetryMax = 5 * time.Second
	}
	if o.RetryElapsed <= 0 {
		o.RetryElapsed = 30 * time.Second
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 5 * time.Second
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Publisher implements domain.AssessmentRecorder.
type Publisher struct {
	loader  BatchLoader
	queue   chan domain.AssessmentRecord
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	running atomic.Bool
}

// New creates a Publisher. Call Run to start delivery.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Publisher {
	opts = opts.withDefaults()
	return &Publisher{
		loader:  l,
		queue:   make(chan domain.AssessmentRecord, opts.QueueSize),
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Record enqueues rec, dropping it if the queue is full.
func (p *Publisher) Record(rec domain.AssessmentRecord) {
	select {
	case p.queue <- rec:
	default:
		p.metrics.RecordsDropped.Inc()
		p.logger.Warn("publish queue full, dropping record", "id", rec.ID)
	}
}

// CheckReadiness returns nil while Run is active.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("record publisher is not running")
	}
	return nil
}

// Run batches queued records until ctx is cancelled, then flushes whatever
// is still queued within DrainTimeout.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.opts.BatchSize, "flush_interval", p.opts.FlushInterval)
	p.running.Store(true)
	p.metrics.PublisherRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	ticker := p.opts.Clock.NewTicker(p.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]domain.AssessmentRecord, 0, p.opts.BatchSize)
	for {
		select {
		case <-ctx.Done():
			p.drain(ctx, batch)
			return nil
		case rec := <-p.queue:
			batch = append(batch, rec)
			if len(batch) >= p.opts.BatchSize {
				batch = p.flush(ctx, batch)
			}
		case <-ticker.Chan():
			if len(batch) > 0 {
				batch = p.flush(ctx, batch)
			}
		}
	}
}

// drain collects everything still queued and writes it with a fresh deadline.
func (p *Publisher) drain(ctx context.Context, batch []domain.AssessmentRecord) {
	for {
		select {
		case rec := <-p.queue:
			batch = append(batch, rec)
			continue
		default:
		}
		break
	}
	if len(batch) == 0 {
		p.logger.Info("publisher stopping", "reason", ctx.Err())
		return
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.DrainTimeout)
	defer cancel()
	for len(batch) > 0 {
		n := min(len(batch), p.opts.BatchSize)
		p.flush(drainCtx, batch[:n])
		batch = batch[n:]
	}
	p.logger.Info("publisher stopping", "reason", ctx.Err())
}

// flush writes batch, retrying with exponential backoff, and returns an empty
// slice reusing batch's storage. A batch that still fails is dropped.
func (p *Publisher) flush(ctx context.Context, batch []domain.AssessmentRecord) []domain.AssessmentRecord {
	p.metrics.BatchSize.Observe(float64(len(batch)))

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.opts.RetryInitial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.opts.RetryMax
	b.MaxElapsedTime = p.opts.RetryElapsed

	op := func() error { return p.loader.LoadBatch(ctx, batch) }
	notify := func(err error, wait time.Duration) {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "retry_in", wait)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		p.metrics.PublishErrors.Inc()
		p.metrics.RecordsDropped.Add(float64(len(batch)))
		p.logger.Error("dropping batch after retries", "error", err, "batch_size", len(batch))
		return batch[:0]
	}

	p.metrics.RecordsPublished.Add(float64(len(batch)))
	return batch[:0]
}
