package ports

import (
	"context"
	"hue-alerts/internal/domain/model"
)

type Actuator interface {
	Trigger(ctx context.Context, req model.ActuationRequest) error
	InFlight() []string
}

type FeedStatus interface {
	Cursor() string
	State() string
	Failures() int
}
