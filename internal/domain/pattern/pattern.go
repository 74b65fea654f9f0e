package pattern

import (
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"time"
)

var ErrUnknownPattern = errors.New("unknown pattern")

// Phase names a state of an actuation. The step phases are produced by a
// Strategy, the others are owned by the actuator.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseCapture Phase = "capture_state"
	Phase1On     Phase = "phase1_on"
	Phase1Off    Phase = "phase1_off"
	Phase2On     Phase = "phase2_on"
	Phase2Off    Phase = "phase2_off"
	PhaseRestore Phase = "restore"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
)

// Step is one write followed by a wall-clock hold.
type Step struct {
	Phase  Phase
	Update model.StateUpdate
	Hold   time.Duration
}

// Strategy produces the fixed program of a pattern.
type Strategy interface {
	Steps() []Step
}

type Factory struct {
	strategies map[model.Pattern]Strategy
}

func NewFactory(flash *AlertFlash) *Factory {
	return &Factory{
		strategies: map[model.Pattern]Strategy{
			model.PatternAlertFlash: flash,
		},
	}
}

func (f *Factory) GetStrategy(p model.Pattern) (Strategy, error) {
	if s, ok := f.strategies[p]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, p)
}
