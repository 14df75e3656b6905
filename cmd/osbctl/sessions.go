package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osb-tools/osbctl/internal/report"
)

var sessionsEnv string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect or clean up configuration sessions.",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the open configuration sessions.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cmd, sessionsEnv)
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.client.ListSessions(ctx)
		if err != nil {
			return wrapRunError(err)
		}

		t := &report.Table{
			Title:   fmt.Sprintf("REPORT: Open sessions on '%s'", a.env.URL),
			Columns: []string{"SESSION_NAME"},
			Sorted:  true,
		}
		for _, n := range names {
			t.AddRow(n)
		}
		return a.sink.Write(t)
	},
}

var sessionsDiscardCmd = &cobra.Command{
	Use:   "discard NAME...",
	Short: "Discard leftover configuration sessions.",
	Long: `Discard named sessions without activating them. Useful after a crash
left a session open and holding locks. Discarding a session that no longer
exists is not an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cmd, sessionsEnv)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, name := range args {
			if err := a.client.Discard(ctx, name); err != nil {
				return wrapRunError(fmt.Errorf("discard session %q: %w", name, err))
			}
			a.logger.Info("session discarded", "session", name)
			fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' discarded.\n", name)
		}
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().StringVar(&sessionsEnv, "env", "", "environment name (see 'osbctl envs')")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsDiscardCmd)
}
