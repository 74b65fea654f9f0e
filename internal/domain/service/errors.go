package service

import "errors"

var (
	// ErrBridgeUnavailable is returned by Connect once every discovery
	// strategy or every enrollment attempt has been exhausted.
	ErrBridgeUnavailable = errors.New("bridge unavailable")

	// ErrAlreadyInProgress is returned by Trigger when the target is already
	// running an actuation. The request is dropped.
	ErrAlreadyInProgress = errors.New("actuation already in progress")

	// ErrActuatorClosed is returned by Trigger and Run once shutdown has
	// started.
	ErrActuatorClosed = errors.New("actuator closed")

	ErrPollerStarted = errors.New("poller already started")
)
