package cli

import (
	"fmt"
	"hue-alerts/internal/domain/model"

	"github.com/spf13/cobra"
)

func NewFlashCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flash [target]",
		Short: "Run one alert flash and restore the previous state",
		Long: `Run the alert flash on a light or group and wait for the restore.

Targets are written light:<n>, group:<n> or <n> for a light. Without a
target actuator.default_target is used.

Example:
  hue-alerts flash group:1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			target := env.Config.Actuator.DefaultTarget
			if len(args) == 1 {
				target = args[0]
			}
			if _, err := model.ParseTarget(target); err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			gw, err := rootOpts.gateway(ctx, cmd, env)
			if err != nil {
				return err
			}

			actuator := newActuator(env.Config.Actuator, gw, env.Logger)
			if err := actuator.Run(ctx, model.ActuationRequest{TargetID: target, Pattern: model.PatternAlertFlash}); err != nil {
				return fmt.Errorf("flash %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flashed %s\n", target)
			return nil
		},
	}
}
