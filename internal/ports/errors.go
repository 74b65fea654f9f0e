package ports

import "errors"

var (
	ErrCredentialNotFound     = errors.New("credential not found")
	ErrEnrollmentNotConfirmed = errors.New("enrollment not confirmed: press the bridge link button")
	ErrNoBridgeFound          = errors.New("no bridge found")
)
