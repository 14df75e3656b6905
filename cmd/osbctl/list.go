package main

import (
	"github.com/spf13/cobra"

	"github.com/osb-tools/osbctl/internal/osb"
)

var listEnv string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployed projects or endpoints.",
}

var listProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects deployed on the environment.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cmd, listEnv)
		if err != nil {
			return err
		}
		defer a.Close()

		return wrapRunError(listProjectsReport(ctx, a))
	},
}

var listProxiesCmd = &cobra.Command{
	Use:   "proxies",
	Short: "List the proxy services deployed on the environment.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListEndpoints(cmd, osb.KindProxy)
	},
}

var listBusinessCmd = &cobra.Command{
	Use:   "business",
	Short: "List the business services deployed on the environment.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListEndpoints(cmd, osb.KindBusiness)
	},
}

func runListEndpoints(cmd *cobra.Command, kind osb.EndpointKind) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cmd, listEnv)
	if err != nil {
		return err
	}
	defer a.Close()

	return wrapRunError(listEndpointsReport(ctx, a, kind))
}

func init() {
	listCmd.PersistentFlags().StringVar(&listEnv, "env", "", "environment name (see 'osbctl envs')")
	listCmd.AddCommand(listProjectsCmd, listProxiesCmd, listBusinessCmd)
}
