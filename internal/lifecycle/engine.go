// Package lifecycle promotes scheduled posts to published once their
// scheduled time has passed.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeremyjsx/quickfacts/internal/events"
	"github.com/jeremyjsx/quickfacts/internal/metrics"
	"github.com/jeremyjsx/quickfacts/internal/posts"
)

const DefaultInterval = 60 * time.Second

// Store is the slice of the post repository the engine needs.
type Store interface {
	ListDue(ctx context.Context, now time.Time) ([]*posts.Post, error)
	MarkPublished(ctx context.Context, published map[uuid.UUID]time.Time) ([]uuid.UUID, error)
}

// SweepError wraps a failed read or write. Sweep errors are only logged.
type SweepError struct {
	Stage string
	Err   error
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("sweep %s: %v", e.Stage, e.Err)
}

func (e *SweepError) Unwrap() error { return e.Err }

const (
	StageRead  = "read"
	StageWrite = "write"
)

// Result describes one sweep. Published holds only the posts this sweep
// wrote; due posts that a concurrent sweep got to first are left out.
type Result struct {
	Due       int
	Published []*posts.Post
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

type Engine struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(store Store, publisher events.Publisher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: publisher,
		logger:    logger,
		interval:  DefaultInterval,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.publisher == nil {
		e.publisher = events.NoopPublisher{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

func (e *Engine) Interval() time.Duration { return e.interval }

// Sweep publishes every due post once. A due post gets its scheduled time as
// its publish time, not the time of the sweep. Running Sweep again, or two
// sweeps at once, is harmless: the write only touches rows that are still
// unpublished, and events go out only for the rows this sweep changed.
func (e *Engine) Sweep(ctx context.Context) (Result, error) {
	now := e.now()

	due, err := e.store.ListDue(ctx, now)
	if err != nil {
		return Result{}, &SweepError{Stage: StageRead, Err: err}
	}
	res := Result{Due: len(due)}
	if len(due) == 0 {
		return res, nil
	}

	updates := make(map[uuid.UUID]time.Time, len(due))
	for _, p := range due {
		at := now
		if p.ScheduledAt != nil {
			at = *p.ScheduledAt
		}
		updates[p.ID] = at
	}
	changed, err := e.store.MarkPublished(ctx, updates)
	if err != nil {
		return res, &SweepError{Stage: StageWrite, Err: err}
	}

	mine := make(map[uuid.UUID]bool, len(changed))
	for _, id := range changed {
		mine[id] = true
	}
	for _, p := range due {
		if !mine[p.ID] {
			continue
		}
		at := updates[p.ID]
		p.PublishedAt = &at
		res.Published = append(res.Published, p)

		ev := events.NewPostPublished(p.ID, p.Title, p.Category, at, events.SourceScheduler)
		if err := e.publisher.PublishPostPublished(ctx, ev); err != nil {
			e.logger.Warn("publish post.published event failed", "post_id", p.ID, "error", err)
		}
	}
	if skipped := len(due) - len(res.Published); skipped > 0 {
		e.logger.Debug("due posts already published elsewhere", "count", skipped)
	}
	return res, nil
}

// Start runs one sweep right away and then one per interval until Stop is
// called or ctx is done. Calling Start on a running engine does nothing.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	e.logger.Info("scheduled post worker started", "interval", e.interval.String())
	go e.loop(ctx, e.done)
}

// Stop cancels future ticks and blocks until an in-flight sweep returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	e.logger.Info("scheduled post worker stopped")
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	// Stopping must not abort a sweep that has already begun.
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scheduled post sweep panicked", "panic", r)
			e.observe("panic", start)
		}
	}()

	res, err := e.Sweep(ctx)
	if err != nil {
		stage := StageRead
		var se *SweepError
		if errors.As(err, &se) {
			stage = se.Stage
		}
		e.logger.Error("scheduled post sweep failed", "stage", stage, "due", res.Due, "error", err)
		e.observe(stage+"_error", start)
		return
	}
	if n := len(res.Published); n > 0 {
		e.logger.Info("published scheduled posts", "count", n)
		if e.metrics != nil {
			e.metrics.PostsPublished.Add(float64(n))
		}
	}
	e.observe("ok", start)
}

func (e *Engine) observe(result string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.Sweeps.WithLabelValues(result).Inc()
	e.metrics.SweepDuration.Observe(time.Since(start).Seconds())
}
