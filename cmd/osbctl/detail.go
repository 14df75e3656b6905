package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osb-tools/osbctl/internal/osb"
	"github.com/osb-tools/osbctl/internal/resolve"
)

var detailEnv string

var detailCmd = &cobra.Command{
	Use:   "detail PROJECT",
	Short: "Show the endpoints a deployed project owns.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cmd, detailEnv)
		if err != nil {
			return err
		}
		defer a.Close()

		project := args[0]
		resolver := &resolve.Resolver{Reader: a.client}
		set, err := resolver.Resolve(ctx, project)
		if errors.Is(err, osb.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "Project '%s' is not deployed on '%s'.\n", project, a.env.URL)
			return nil
		}
		if err != nil {
			return wrapRunError(err)
		}
		if len(set) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Project '%s' owns no service endpoints.\n", project)
			return nil
		}

		if err := projectDetailsReport(a, project, set); err != nil {
			return err
		}
		a.logger.Info("project detailed", "project", project, "endpoints", len(set))
		return nil
	},
}

func init() {
	detailCmd.Flags().StringVar(&detailEnv, "env", "", "environment name (see 'osbctl envs')")
}
