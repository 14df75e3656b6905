package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/osb-tools/osbctl/internal/confirm"
)

var (
	undeployEnv string
	undeployYes bool
)

var undeployCmd = &cobra.Command{
	Use:   "undeploy PROJECT...",
	Short: "Delete deployed projects and reclaim the resources they own.",
	Long: `Delete each named project inside its own configuration session, then
remove the messaging destinations and work managers that only the deleted
project was using. Shared infrastructure is left alone unless confirmed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cmd, undeployEnv)
		if err != nil {
			return err
		}
		defer a.Close()

		ask := confirm.Terminal(os.Stdin, os.Stderr)
		if undeployYes {
			ask = confirm.Yes()
		}
		return wrapRunError(runUndeploy(ctx, a, ask, args))
	},
}

func init() {
	undeployCmd.Flags().StringVar(&undeployEnv, "env", "", "environment name (see 'osbctl envs')")
	undeployCmd.Flags().BoolVarP(&undeployYes, "yes", "y", false, "answer yes to every confirmation")
}
