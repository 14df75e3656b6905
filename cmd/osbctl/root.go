package main

import "github.com/spf13/cobra"

// annotationPlainOutput marks commands whose output is consumed directly by
// a human or a shell pipeline; their fatal path prints plain errors instead
// of structured log lines.
const annotationPlainOutput = "plain-output"

var rootCmd = &cobra.Command{
	Use:           "osbctl",
	Short:         "osbctl manages service-bus projects, endpoints, and their messaging resources.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setCommandExecutionContext(commandExecutionContext{
			CommandPath:       cmd.CommandPath(),
			UsesStructuredLog: commandUsesStructuredLogging(cmd),
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationPlainOutput] == "true" {
			return false
		}
	}
	return true
}

func init() {
	rootCmd.AddCommand(envsCmd, listCmd, detailCmd, undeployCmd, toggleCmd, toggleMonitoringCmd, sessionsCmd, interactiveCmd)
}
