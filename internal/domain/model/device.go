package model

type Pattern string

const (
	PatternAlertFlash Pattern = "alert_flash"
)

// ActuationRequest asks the actuator to run Pattern on TargetID, which is a
// light or group identifier understood by the gateway ("light:5", "group:0").
type ActuationRequest struct {
	TargetID string
	Pattern  Pattern
}

// DeviceSnapshot is the state of a target captured right before an
// actuation mutates it.
type DeviceSnapshot struct {
	On         bool
	Brightness int
	XY         []float32
	Reachable  bool
}

// StateUpdate is a partial state write. Nil fields are left untouched.
type StateUpdate struct {
	On         *bool
	Brightness *int
	XY         []float32
}

// Restore returns the update that puts a target back into the snapshot state.
func (s DeviceSnapshot) Restore() StateUpdate {
	on := s.On
	bri := s.Brightness
	u := StateUpdate{On: &on, Brightness: &bri}
	if len(s.XY) == 2 {
		u.XY = []float32{s.XY[0], s.XY[1]}
	}
	return u
}

// RestoreUpdates returns the writes that put a target back into the snapshot
// state. The bridge rejects brightness and colour for a light that is off,
// so an off snapshot is restored lit and then switched off.
func (s DeviceSnapshot) RestoreUpdates() []StateUpdate {
	u := s.Restore()
	if s.On {
		return []StateUpdate{u}
	}
	on, off := true, false
	u.On = &on
	return []StateUpdate{u, {On: &off}}
}

type LightInfo struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	On   bool   `json:"on" yaml:"on"`
}
