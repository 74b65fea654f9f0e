package cli

import (
	"context"
	"fmt"
	"hue-alerts/internal/config"
	"hue-alerts/internal/logging"
	"hue-alerts/internal/ports"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	// Connect overrides how commands obtain a bridge gateway (for testing).
	// If nil, the connection manager discovers and enrolls as needed.
	Connect func(ctx context.Context, env *Env) (ports.Gateway, error)
}

// Env is what a command needs after flags are parsed.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	close  func() error
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hue-alerts",
		Short: "Flash Hue lights when feed events arrive",
		Long: `hue-alerts long-polls an events feed and flashes a Philips Hue light or
group when an event matches one of the configured rules.

The bridge is located through mDNS, SSDP, the cloud directory or a manual
prompt the first time, and the issued username is kept in the credentials
file for later runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override logging.level (debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewFlashCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewLightsCommand(opts))

	return cmd
}

// load reads the config and builds the logger. Callers must call Close.
func (o *RootOptions) load() (*Env, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Logger: logger, close: closer}, nil
}

func (e *Env) Close() {
	if err := e.close(); err != nil {
		e.Logger.Error("closing log output", "error", err)
	}
}

func (o *RootOptions) gateway(ctx context.Context, cmd *cobra.Command, env *Env) (ports.Gateway, error) {
	if o.Connect != nil {
		return o.Connect(ctx, env)
	}
	manager := newConnectionManager(env, cmd.InOrStdin(), cmd.ErrOrStderr())
	gw, err := manager.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to bridge: %w", err)
	}
	return gw, nil
}
