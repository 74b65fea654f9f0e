package cli

import (
	"fmt"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/ports"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type OutputOptions struct {
	*RootOptions
	Format string
}

type stateView struct {
	Target     string    `json:"target" yaml:"target"`
	On         bool      `json:"on" yaml:"on"`
	Brightness int       `json:"brightness" yaml:"brightness"`
	XY         []float32 `json:"xy,omitempty" yaml:"xy,omitempty,flow"`
	Reachable  bool      `json:"reachable" yaml:"reachable"`
}

func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OutputOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state <target>",
		Short: "Print the current state of a light or group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.Format); err != nil {
				return err
			}
			target, err := model.ParseTarget(args[0])
			if err != nil {
				return err
			}

			env, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, stop := signalContext(cmd)
			defer stop()

			gw, err := rootOpts.gateway(ctx, cmd, env)
			if err != nil {
				return err
			}
			snap, err := gw.ReadState(ctx, target.String())
			if err != nil {
				return err
			}

			view := stateView{
				Target:     target.String(),
				On:         snap.On,
				Brightness: snap.Brightness,
				XY:         snap.XY,
				Reachable:  snap.Reachable,
			}
			return printValue(cmd.OutOrStdout(), opts.Format, view, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "TARGET\tON\tBRIGHTNESS\tXY\tREACHABLE\n")
				fmt.Fprintf(w, "%s\t%t\t%d\t%v\t%t\n", view.Target, view.On, view.Brightness, view.XY, view.Reachable)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "o", "text", "output format (text|json|yaml)")

	return cmd
}

func NewLightsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OutputOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lights",
		Short: "List the lights known to the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.Format); err != nil {
				return err
			}

			env, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, stop := signalContext(cmd)
			defer stop()

			gw, err := rootOpts.gateway(ctx, cmd, env)
			if err != nil {
				return err
			}
			inv, ok := gw.(ports.Inventory)
			if !ok {
				return fmt.Errorf("gateway cannot list lights")
			}
			lights, err := inv.Lights(ctx)
			if err != nil {
				return err
			}
			sortLights(lights)

			return printValue(cmd.OutOrStdout(), opts.Format, lights, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\tNAME\tTYPE\tON\n")
				for _, l := range lights {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", l.ID, l.Name, l.Type, l.On)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "o", "text", "output format (text|json|yaml)")

	return cmd
}
