package pattern

import (
	"hue-alerts/internal/domain/model"
	"time"
)

// AlertFlash flashes the target twice in the alert color: on, hold, off,
// hold, on, hold, off, hold.
type AlertFlash struct {
	Brightness int
	XY         [2]float32
	HoldOn     time.Duration
	HoldOff    time.Duration
}

func (a *AlertFlash) Steps() []Step {
	return []Step{
		{Phase: Phase1On, Update: a.on(), Hold: a.HoldOn},
		{Phase: Phase1Off, Update: a.off(), Hold: a.HoldOff},
		{Phase: Phase2On, Update: a.on(), Hold: a.HoldOn},
		{Phase: Phase2Off, Update: a.off(), Hold: a.HoldOff},
	}
}

func (a *AlertFlash) on() model.StateUpdate {
	on := true
	bri := a.Brightness
	return model.StateUpdate{On: &on, Brightness: &bri, XY: []float32{a.XY[0], a.XY[1]}}
}

func (a *AlertFlash) off() model.StateUpdate {
	off := false
	return model.StateUpdate{On: &off}
}
