package service

import (
	"context"
	"errors"
	"hue-alerts/internal/domain/model"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Monitor is the top-level loop: poll, dispatch, actuate.
type Monitor struct {
	poller     *Poller
	dispatcher *Dispatcher
	actuator   *Actuator
	queueSize  int
	grace      time.Duration
	logger     *slog.Logger
}

// NewMonitor wires the pipeline. queueSize bounds the batches waiting for
// dispatch; zero means the poller waits for each dispatch to finish.
func NewMonitor(poller *Poller, dispatcher *Dispatcher, actuator *Actuator, queueSize int, grace time.Duration, logger *slog.Logger) *Monitor {
	if queueSize < 0 {
		queueSize = 0
	}
	return &Monitor{
		poller:     poller,
		dispatcher: dispatcher,
		actuator:   actuator,
		queueSize:  queueSize,
		grace:      grace,
		logger:     orDiscard(logger).With("component", "monitor"),
	}
}

// Run blocks until ctx is cancelled, then closes the actuator and waits up
// to the grace period for in-flight actuations. Cancellation is not
// reported as an error.
func (m *Monitor) Run(ctx context.Context) error {
	batches := make(chan model.Batch, m.queueSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.poller.Run(gctx, batches)
	})
	g.Go(func() error {
		m.dispatch(gctx, batches)
		return nil
	})

	m.logger.Info("monitor started")
	err := g.Wait()
	m.actuator.Close()

	if inflight := m.actuator.InFlight(); len(inflight) > 0 {
		m.logger.Info("waiting for in-flight actuations", "targets", inflight, "grace", m.grace)
	}
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.grace)
	defer cancel()
	if werr := m.actuator.Wait(waitCtx); werr != nil {
		m.logger.Warn("grace period elapsed with actuations still running", "targets", m.actuator.InFlight())
	}

	m.logger.Info("monitor stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// dispatch handles batches in order until the channel is closed. Batches
// still queued once ctx is done are drained without starting actuations.
func (m *Monitor) dispatch(ctx context.Context, batches <-chan model.Batch) {
	dropped := 0
	for batch := range batches {
		if ctx.Err() != nil {
			dropped += len(batch.Events)
			continue
		}
		m.dispatcher.Handle(ctx, batch, m.actuator)
	}
	if dropped > 0 {
		m.logger.Info("dropped queued events after stop", "events", dropped)
	}
}
