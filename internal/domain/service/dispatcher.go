package service

import (
	"context"
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/domain/rule"
	"hue-alerts/internal/ports"
	"log/slog"
)

// Dispatcher maps feed events to actuation requests. It performs no I/O
// itself and never fails: every per-event problem is logged and the next
// event is processed.
type Dispatcher struct {
	rules         map[string][]*rule.Rule
	defaultTarget string
	logger        *slog.Logger
}

func NewDispatcher(rules []*rule.Rule, defaultTarget string, logger *slog.Logger) *Dispatcher {
	byMethod := make(map[string][]*rule.Rule)
	for _, r := range rules {
		byMethod[r.Method] = append(byMethod[r.Method], r)
	}
	return &Dispatcher{
		rules:         byMethod,
		defaultTarget: defaultTarget,
		logger:        orDiscard(logger).With("component", "dispatcher"),
	}
}

// Handle processes the events of batch in order.
func (d *Dispatcher) Handle(ctx context.Context, batch model.Batch, act ports.Actuator) {
	for i := range batch.Events {
		d.handleEvent(ctx, batch.Events[i], act)
	}
}

func (d *Dispatcher) handleEvent(ctx context.Context, ev model.FeedEvent, act ports.Actuator) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handling panicked", "event_id", ev.ID, "method", ev.Method, "panic", fmt.Sprint(r))
		}
	}()

	if ev.Method == "" {
		d.logger.Error("event format error: missing method", "event_id", ev.ID)
		return
	}

	rules, ok := d.rules[ev.Method]
	if !ok {
		d.logger.Debug("ignoring event", "event_id", ev.ID, "method", ev.Method)
		return
	}

	params := rule.Parameters(ev)
	d.logger.Info("event received", "event_id", ev.ID, "method", ev.Method, "username", params["username"])

	for _, r := range rules {
		matched, err := r.Matches(params)
		if err != nil {
			d.logger.Error("rule evaluation failed", "event_id", ev.ID, "rule", r.String(), "error", err)
			continue
		}
		if !matched {
			d.logger.Debug("rule not matched", "event_id", ev.ID, "rule", r.String())
			continue
		}

		req := model.ActuationRequest{TargetID: d.targetFor(r), Pattern: model.PatternAlertFlash}
		if err := act.Trigger(ctx, req); err != nil {
			if errors.Is(err, ErrAlreadyInProgress) {
				d.logger.Info("actuation dropped", "target", req.TargetID, "reason", err)
				continue
			}
			d.logger.Error("actuation rejected", "target", req.TargetID, "error", err)
		}
	}
}

func (d *Dispatcher) targetFor(r *rule.Rule) string {
	if r.Target != "" {
		return r.Target
	}
	return d.defaultTarget
}
