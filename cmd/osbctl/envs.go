package main

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/osb-tools/osbctl/internal/config"
	"github.com/osb-tools/osbctl/internal/report"
)

var envsCmd = &cobra.Command{
	Use:         "envs",
	Short:       "List the environments that have a connection properties file.",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPlainOutput: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		envs, err := config.DiscoverEnvironments(cfg.EnvDir)
		if err != nil {
			return err
		}
		return report.NewSink(os.Stdout).Write(envsTable(envs))
	},
}

// envsTable lays the environments out one group per column, names sorted
// within each group.
func envsTable(envs []config.EnvFile) *report.Table {
	byGroup := make(map[string][]string)
	for _, e := range envs {
		group := e.Group
		if group == "" {
			group = config.Groups[len(config.Groups)-1]
		}
		byGroup[group] = append(byGroup[group], e.Name)
	}

	depth := 0
	for _, g := range config.Groups {
		sort.Strings(byGroup[g])
		if len(byGroup[g]) > depth {
			depth = len(byGroup[g])
		}
	}

	t := &report.Table{
		Title:   "Available environments:",
		Columns: config.Groups,
	}
	for i := 0; i < depth; i++ {
		row := make([]any, len(config.Groups))
		for j, g := range config.Groups {
			cell := ""
			if i < len(byGroup[g]) {
				cell = byGroup[g][i]
			}
			row[j] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
