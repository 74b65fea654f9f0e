package service

import (
	"context"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type PollerState string

const (
	PollerIdle       PollerState = "idle"
	PollerFetching   PollerState = "fetching"
	PollerBackoff    PollerState = "backoff"
	PollerTerminated PollerState = "terminated"
)

// fetchSlack is added to the long-poll window to get the client deadline,
// so that a server holding the request for the full window is not cut off.
const fetchSlack = 5 * time.Second

type PollerConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	FetchTimeout time.Duration
	// Cursor is the position to resume from. Empty starts at the feed head.
	Cursor string
}

// Poller repeatedly fetches batches from a feed. Failures are logged and
// retried with exponential backoff; they never reach the consumer. The
// cursor only moves forward on a successful fetch.
type Poller struct {
	feed    ports.FeedSource
	cfg     PollerConfig
	backoff *Backoff
	logger  *slog.Logger
	sleep   SleepFunc

	started atomic.Bool

	mu       sync.RWMutex
	cursor   string
	state    PollerState
	failures int
}

func NewPoller(feed ports.FeedSource, cfg PollerConfig, logger *slog.Logger) *Poller {
	return &Poller{
		feed:    feed,
		cfg:     cfg,
		backoff: NewBackoff(cfg.InitialDelay, cfg.MaxDelay, cfg.Factor),
		logger:  orDiscard(logger).With("component", "poller"),
		sleep:   sleepContext,
		cursor:  cfg.Cursor,
		state:   PollerIdle,
	}
}

// Run polls until ctx is done and publishes every batch on out, which it
// closes on return. A Poller runs at most once.
func (p *Poller) Run(ctx context.Context, out chan<- model.Batch) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrPollerStarted
	}
	return p.loop(ctx, out)
}

// Batches starts the poll loop in the background and returns its output.
func (p *Poller) Batches(ctx context.Context, buffer int) (<-chan model.Batch, error) {
	if !p.started.CompareAndSwap(false, true) {
		return nil, ErrPollerStarted
	}
	out := make(chan model.Batch, buffer)
	go func() {
		if err := p.loop(ctx, out); err != nil && ctx.Err() == nil {
			p.logger.Error("poll loop stopped", "error", err)
		}
	}()
	return out, nil
}

func (p *Poller) loop(ctx context.Context, out chan<- model.Batch) error {
	defer close(out)
	defer p.setState(PollerTerminated)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.setState(PollerFetching)
		cursor := p.Cursor()
		batch, err := p.fetch(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay, failures := p.recordFailure()
			p.logger.Warn("feed fetch failed",
				"error", err,
				"consecutive_failures", failures,
				"retry_in", delay,
			)
			p.setState(PollerBackoff)
			if err := p.sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		p.recordSuccess(batch.NextCursor)
		p.setState(PollerIdle)
		p.logger.Debug("feed batch received", "events", len(batch.Events))

		select {
		case out <- batch:
		case <-ctx.Done():
			p.logger.Warn("batch dropped on shutdown", "events", len(batch.Events))
			return ctx.Err()
		}
	}
}

func (p *Poller) fetch(ctx context.Context, cursor string) (model.Batch, error) {
	fetchCtx := ctx
	if p.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.cfg.FetchTimeout+fetchSlack)
		defer cancel()
	}
	return p.feed.FetchBatch(fetchCtx, cursor, p.cfg.FetchTimeout)
}

func (p *Poller) recordFailure() (time.Duration, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
	return p.backoff.Next(), p.failures
}

func (p *Poller) recordSuccess(next string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = 0
	p.backoff.Reset()
	if next != "" {
		p.cursor = next
	}
}

func (p *Poller) setState(s PollerState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) Cursor() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cursor
}

func (p *Poller) State() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return string(p.state)
}

func (p *Poller) Failures() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.failures
}

var _ ports.FeedStatus = (*Poller)(nil)
