package service

import (
	"context"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/domain/pattern"
	"hue-alerts/internal/ports"
	"log/slog"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Actuator runs timed state sequences against gateway targets. At most one
// actuation runs per target; the captured state is restored on every path.
// It is the only component that writes device state.
type Actuator struct {
	gateway  ports.Gateway
	patterns *pattern.Factory
	neutral  model.DeviceSnapshot
	logger   *slog.Logger
	sleep    SleepFunc

	mu     sync.Mutex
	active map[string]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewActuator builds an actuator. neutral is restored when the pre-trigger
// state of a target could not be captured.
func NewActuator(gateway ports.Gateway, patterns *pattern.Factory, neutral model.DeviceSnapshot, logger *slog.Logger) *Actuator {
	return &Actuator{
		gateway:  gateway,
		patterns: patterns,
		neutral:  neutral,
		logger:   orDiscard(logger).With("component", "actuator"),
		sleep:    sleepContext,
		active:   make(map[string]struct{}),
	}
}

// Trigger starts req in the background and returns immediately. The
// actuation is detached from ctx cancellation so that it always reaches its
// restore step; use Wait to join in-flight actuations.
func (a *Actuator) Trigger(ctx context.Context, req model.ActuationRequest) error {
	strategy, err := a.patterns.GetStrategy(req.Pattern)
	if err != nil {
		return err
	}
	if err := a.acquire(req.TargetID); err != nil {
		return err
	}

	go func() {
		defer a.release(req.TargetID)
		_ = a.execute(context.WithoutCancel(ctx), req, strategy)
	}()
	return nil
}

// Run executes req synchronously. Cancelling ctx aborts the sequence but
// the restore is still issued.
func (a *Actuator) Run(ctx context.Context, req model.ActuationRequest) error {
	strategy, err := a.patterns.GetStrategy(req.Pattern)
	if err != nil {
		return err
	}
	if err := a.acquire(req.TargetID); err != nil {
		return err
	}
	defer a.release(req.TargetID)
	return a.execute(ctx, req, strategy)
}

// Close stops accepting actuations; Trigger and Run return ErrActuatorClosed
// afterwards. Running actuations are not interrupted, join them with Wait.
func (a *Actuator) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}

// Wait blocks until every in-flight actuation has finished or ctx is done.
func (a *Actuator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight returns the targets currently under actuation, sorted.
func (a *Actuator) InFlight() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	targets := make([]string, 0, len(a.active))
	for t := range a.active {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// acquire locks target and registers the actuation with wg. Both happen
// under mu so that no actuation can start once Close has returned.
func (a *Actuator) acquire(target string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("%w: %s", ErrActuatorClosed, target)
	}
	if _, busy := a.active[target]; busy {
		return fmt.Errorf("%w: %s", ErrAlreadyInProgress, target)
	}
	a.active[target] = struct{}{}
	a.wg.Add(1)
	return nil
}

func (a *Actuator) release(target string) {
	a.mu.Lock()
	delete(a.active, target)
	a.mu.Unlock()
	a.wg.Done()
}

// actuation is the state of one running sequence.
type actuation struct {
	req      model.ActuationRequest
	steps    []pattern.Step
	next     int
	snapshot *model.DeviceSnapshot
	err      error
	logger   *slog.Logger
}

func (a *Actuator) execute(ctx context.Context, req model.ActuationRequest, strategy pattern.Strategy) error {
	act := &actuation{
		req:   req,
		steps: strategy.Steps(),
		logger: a.logger.With(
			"actuation", ulid.Make().String(),
			"target", req.TargetID,
			"pattern", req.Pattern,
		),
	}

	act.logger.Info("actuation started")
	phase := pattern.PhaseIdle
	for phase != pattern.PhaseDone && phase != pattern.PhaseFailed {
		phase = a.advance(ctx, act, phase)
		act.logger.Debug("actuation phase", "phase", phase)
	}

	if act.err != nil {
		act.logger.Error("actuation failed", "error", act.err)
		return act.err
	}
	act.logger.Info("actuation complete")
	return nil
}

// advance performs the work of phase and returns the next phase. Every
// failure before the restore leads to PhaseRestore; the restore is the only
// path to PhaseDone or PhaseFailed.
func (a *Actuator) advance(ctx context.Context, act *actuation, phase pattern.Phase) pattern.Phase {
	switch phase {
	case pattern.PhaseIdle:
		return pattern.PhaseCapture

	case pattern.PhaseCapture:
		snap, err := a.gateway.ReadState(ctx, act.req.TargetID)
		if err != nil {
			act.err = fmt.Errorf("capture state of %s: %w", act.req.TargetID, err)
			return pattern.PhaseRestore
		}
		act.snapshot = &snap
		return a.stepPhase(act)

	case pattern.PhaseRestore:
		updates := a.neutral.RestoreUpdates()
		if act.snapshot != nil {
			updates = act.snapshot.RestoreUpdates()
		}
		// The restore must go out even when the caller gave up.
		for _, update := range updates {
			if err := a.gateway.WriteState(context.WithoutCancel(ctx), act.req.TargetID, update); err != nil {
				act.logger.Error("restore failed", "error", err)
				if act.err == nil {
					act.err = fmt.Errorf("restore %s: %w", act.req.TargetID, err)
				}
				break
			}
		}
		if act.err != nil {
			return pattern.PhaseFailed
		}
		return pattern.PhaseDone

	default:
		step := act.steps[act.next]
		if err := a.gateway.WriteState(ctx, act.req.TargetID, step.Update); err != nil {
			act.err = fmt.Errorf("%s on %s: %w", step.Phase, act.req.TargetID, err)
			return pattern.PhaseRestore
		}
		if err := a.sleep(ctx, step.Hold); err != nil {
			act.err = fmt.Errorf("%s hold on %s: %w", step.Phase, act.req.TargetID, err)
			return pattern.PhaseRestore
		}
		act.next++
		return a.stepPhase(act)
	}
}

func (a *Actuator) stepPhase(act *actuation) pattern.Phase {
	if act.next < len(act.steps) {
		return act.steps[act.next].Phase
	}
	return pattern.PhaseRestore
}

var _ ports.Actuator = (*Actuator)(nil)
