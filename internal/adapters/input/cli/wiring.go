package cli

import (
	"hue-alerts/internal/adapters/output/discovery"
	"hue-alerts/internal/adapters/output/hue"
	"hue-alerts/internal/adapters/output/persistence"
	"hue-alerts/internal/config"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/domain/pattern"
	"hue-alerts/internal/domain/service"
	"hue-alerts/internal/ports"
	"io"
	"log/slog"
)

func newConnectionManager(env *Env, in io.Reader, out io.Writer) *service.ConnectionManager {
	cfg := env.Config.Bridge
	return service.NewConnectionManager(
		persistence.NewJSONCredentialRepository(cfg.CredentialsFile),
		hue.NewClient(cfg.DeviceType, cfg.CommandsPerSecond, env.Logger),
		discoverers(cfg.Discovery, in, out, env.Logger),
		service.EnrollmentConfig{
			Attempts:   cfg.Enrollment.Attempts,
			RetryDelay: cfg.Enrollment.RetryDelay,
		},
		env.Logger,
	)
}

// discoverers returns the enabled strategies in chain order.
func discoverers(cfg config.DiscoveryConfig, in io.Reader, out io.Writer, logger *slog.Logger) []ports.Discoverer {
	var chain []ports.Discoverer
	if cfg.MDNS {
		chain = append(chain, discovery.NewMDNS(cfg.Timeout, logger))
	}
	if cfg.SSDP {
		chain = append(chain, discovery.NewSSDP(cfg.Timeout, logger))
	}
	if cfg.Cloud {
		chain = append(chain, discovery.NewCloud(cfg.Timeout, logger))
	}
	if cfg.Manual {
		chain = append(chain, discovery.NewManual(in, out, logger))
	}
	return chain
}

func newActuator(cfg config.ActuatorConfig, gw ports.Gateway, logger *slog.Logger) *service.Actuator {
	flash := &pattern.AlertFlash{
		Brightness: cfg.Alert.Brightness,
		XY:         [2]float32{cfg.Alert.XY[0], cfg.Alert.XY[1]},
		HoldOn:     cfg.Alert.HoldOn,
		HoldOff:    cfg.Alert.HoldOff,
	}
	neutral := model.DeviceSnapshot{
		On:         true,
		Brightness: cfg.Neutral.Brightness,
		XY:         append([]float32(nil), cfg.Neutral.XY...),
	}
	return service.NewActuator(gw, pattern.NewFactory(flash), neutral, logger)
}

func pollerConfig(cfg config.FeedConfig) service.PollerConfig {
	return service.PollerConfig{
		InitialDelay: cfg.InitialDelay,
		MaxDelay:     cfg.MaxDelay,
		Factor:       cfg.Factor,
		FetchTimeout: cfg.Timeout,
	}
}
