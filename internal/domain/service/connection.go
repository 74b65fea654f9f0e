package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"log/slog"
	"net"
	"time"
)

type EnrollmentConfig struct {
	// Attempts bounds the enrollment tries while the link button has not
	// been pressed.
	Attempts   int
	RetryDelay time.Duration
}

// ConnectionManager resolves the bridge address and username, persists
// them and hands out a ready gateway.
type ConnectionManager struct {
	repo       ports.CredentialRepository
	client     ports.BridgeClient
	strategies []ports.Discoverer
	cfg        EnrollmentConfig
	logger     *slog.Logger
	sleep      SleepFunc
}

// NewConnectionManager builds a manager. strategies are tried in order.
func NewConnectionManager(repo ports.CredentialRepository, client ports.BridgeClient, strategies []ports.Discoverer, cfg EnrollmentConfig, logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{
		repo:       repo,
		client:     client,
		strategies: strategies,
		cfg:        cfg,
		logger:     orDiscard(logger).With("component", "connection"),
		sleep:      sleepContext,
	}
}

// Connect returns a gateway for the stored credential, or discovers and
// enrolls against a bridge when there is none. It fails with
// ErrBridgeUnavailable only when discovery or enrollment is exhausted.
func (m *ConnectionManager) Connect(ctx context.Context) (ports.Gateway, error) {
	cred, err := m.repo.Load(ctx)
	switch {
	case err == nil && cred.Valid():
		m.logger.Info("using stored credential", "address", cred.Address)
		return m.client.Open(cred), nil
	case err == nil && cred.Address != "":
		m.logger.Info("stored address has no username, enrolling", "address", cred.Address)
	case err == nil || errors.Is(err, ports.ErrCredentialNotFound):
		m.logger.Info("no stored credential, discovering bridge")
	default:
		m.logger.Warn("stored credential unreadable, discovering bridge", "error", err)
		cred = model.Credential{}
	}

	address := cred.Address
	if address == "" {
		res := m.Discover(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !res.Found() {
			return nil, fmt.Errorf("%w: %w", ErrBridgeUnavailable, ports.ErrNoBridgeFound)
		}
		address = res.Address
	}

	token, err := m.enroll(ctx, address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrBridgeUnavailable, err)
	}

	cred = model.Credential{Address: address, Token: token}
	if err := m.repo.Save(ctx, cred); err != nil {
		m.logger.Error("persisting credential failed, continuing with in-memory credential", "error", err)
	} else {
		m.logger.Info("credential saved", "address", address)
	}
	return m.client.Open(cred), nil
}

// Discover runs the strategies in order and returns the first address
// found. Strategy failures are logged and never abort the chain.
func (m *ConnectionManager) Discover(ctx context.Context) model.DiscoveryResult {
	for _, s := range m.strategies {
		if ctx.Err() != nil {
			return model.NotFound()
		}
		address, err := s.Discover(ctx)
		switch {
		case err != nil:
			m.logger.Warn("discovery strategy failed",
				"strategy", s.Source(),
				"kind", discoveryErrorKind(err),
				"error", err,
			)
		case address == "":
			m.logger.Info("discovery strategy found nothing", "strategy", s.Source())
		default:
			m.logger.Info("bridge found", "strategy", s.Source(), "address", address)
			return model.DiscoveryResult{Source: s.Source(), Address: address}
		}
	}
	return model.NotFound()
}

func (m *ConnectionManager) enroll(ctx context.Context, address string) (string, error) {
	attempts := m.cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		token, err := m.client.Enroll(ctx, address)
		if err == nil && token == "" {
			err = errors.New("bridge returned an empty username")
		}
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, ports.ErrEnrollmentNotConfirmed) {
			return "", fmt.Errorf("enroll at %s: %w", address, err)
		}
		if attempt >= attempts {
			return "", fmt.Errorf("enroll at %s after %d attempts: %w", address, attempts, err)
		}

		m.logger.Warn("press the link button on the bridge",
			"address", address,
			"attempt", attempt,
			"max_attempts", attempts,
			"retry_in", m.cfg.RetryDelay,
		)
		if err := m.sleep(ctx, m.cfg.RetryDelay); err != nil {
			return "", err
		}
	}
}

// discoveryErrorKind separates genuine absence from misconfiguration in
// the logs; the chain treats every kind the same.
func discoveryErrorKind(err error) string {
	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ports.ErrNoBridgeFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "malformed_response"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "error"
	}
}
