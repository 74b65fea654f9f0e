package ports

import (
	"context"
	"hue-alerts/internal/domain/model"
)

// Gateway reads and writes the state of bridge-managed lights and groups.
type Gateway interface {
	ReadState(ctx context.Context, targetID string) (model.DeviceSnapshot, error)
	WriteState(ctx context.Context, targetID string, update model.StateUpdate) error
}

type Inventory interface {
	Lights(ctx context.Context) ([]model.LightInfo, error)
}

// BridgeClient builds gateways for a known credential and enrolls new
// usernames. Enroll returns ErrEnrollmentNotConfirmed while the bridge link
// button has not been pressed.
type BridgeClient interface {
	Open(cred model.Credential) Gateway
	Enroll(ctx context.Context, address string) (string, error)
}
