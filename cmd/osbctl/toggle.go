package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osb-tools/osbctl/internal/toggle"
)

var (
	toggleEnv   string
	toggleState string
)

var toggleCmd = &cobra.Command{
	Use:   "toggle PATH...",
	Short: "Enable or disable proxy services.",
	Long: `Switch the enabled state of one or more proxy services in a single
configuration session. Paths are full service paths, e.g.
'MyProject/Proxy/MyService'. Services already in the requested state are
reported with a trailing '*' and left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggleCommand(cmd, toggle.TargetEnablement, args)
	},
}

var toggleMonitoringCmd = &cobra.Command{
	Use:   "toggle-monitoring PATH...",
	Short: "Enable or disable monitoring of proxy services.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggleCommand(cmd, toggle.TargetMonitoring, args)
	},
}

func runToggleCommand(cmd *cobra.Command, target toggle.Target, paths []string) error {
	enable, err := parseState(toggleState)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cmd, toggleEnv)
	if err != nil {
		return err
	}
	defer a.Close()

	return wrapRunError(runToggleBatch(ctx, a, target, paths, enable))
}

func parseState(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state %q: must be on or off", s)
	}
}

func init() {
	for _, c := range []*cobra.Command{toggleCmd, toggleMonitoringCmd} {
		c.Flags().StringVar(&toggleEnv, "env", "", "environment name (see 'osbctl envs')")
		c.Flags().StringVar(&toggleState, "state", "", "target state: on or off")
		_ = c.MarkFlagRequired("state")
	}
}
