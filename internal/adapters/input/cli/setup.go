package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Discover the bridge, enroll and store the credential",
		Long: `Locate the bridge, register this application and save the credential.

Press the link button on the bridge when asked; enrollment is retried
bridge.enrollment.attempts times. A stored credential is reused as is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, stop := signalContext(cmd)
			defer stop()

			if _, err := rootOpts.gateway(ctx, cmd, env); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bridge ready. Credential stored in %s\n", env.Config.Bridge.CredentialsFile)
			return nil
		},
	}
}
