package cli

import (
	"context"
	"fmt"
	"hue-alerts/internal/adapters/input/http"
	"hue-alerts/internal/adapters/output/feed"
	"hue-alerts/internal/domain/service"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type RunOptions struct {
	*RootOptions
	Cursor string
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the events feed and flash lights on matching events",
		Long: `Connect to the bridge, then long-poll the events feed until interrupted.

On SIGINT or SIGTERM polling stops and flashes already running are given
actuator.shutdown_grace to restore their lights.

Example:
  HUE_ALERTS_FEED_USERNAME=alice HUE_ALERTS_FEED_TOKEN=... hue-alerts run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "resume from this feed URL instead of the feed head")

	return cmd
}

func runMonitor(opts *RunOptions, cmd *cobra.Command) error {
	env, err := opts.load()
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.Config
	if err := cfg.ValidateFeed(); err != nil {
		return err
	}
	rules, err := cfg.CompileRules()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	gw, err := opts.gateway(ctx, cmd, env)
	if err != nil {
		return err
	}

	pcfg := pollerConfig(cfg.Feed)
	pcfg.Cursor = opts.Cursor
	poller := service.NewPoller(
		feed.NewClient(cfg.Feed.URL, cfg.Feed.Username, cfg.Feed.Token, nil, env.Logger),
		pcfg,
		env.Logger,
	)
	actuator := newActuator(cfg.Actuator, gw, env.Logger)
	dispatcher := service.NewDispatcher(rules, cfg.Actuator.DefaultTarget, env.Logger)
	monitor := service.NewMonitor(poller, dispatcher, actuator, cfg.Feed.QueueSize, cfg.Actuator.ShutdownGrace, env.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	if cfg.HTTP.Addr != "" {
		server := http.NewServer(poller, actuator, cfg.Actuator.DefaultTarget, env.Logger)
		g.Go(func() error {
			if err := server.ListenAndServe(gctx, cfg.HTTP.Addr); err != nil {
				return fmt.Errorf("status endpoint: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	env.Logger.Info("stopped", "cursor", poller.Cursor())
	return nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
