package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/osb-tools/osbctl/internal/config"
)

func TestEnvsTableGroupsAndPads(t *testing.T) {
	t.Parallel()

	envs := []config.EnvFile{
		{Name: "FINANCE", Group: "PROD"},
		{Name: "BILLING", Group: "PROD"},
		{Name: "SANDBOX", Group: "DEV"},
		{Name: "ODD", Group: ""},
	}

	tbl := envsTable(envs)
	if got, want := len(tbl.Columns), len(config.Groups); got != want {
		t.Fatalf("columns = %d, want %d", got, want)
	}
	if got := len(tbl.Rows); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	// PROD names sort; the ungrouped file falls into the last group.
	if tbl.Rows[0][0] != "BILLING" || tbl.Rows[1][0] != "FINANCE" {
		t.Fatalf("PROD column = %v / %v", tbl.Rows[0][0], tbl.Rows[1][0])
	}
	if tbl.Rows[0][3] != "ODD" || tbl.Rows[1][3] != "SANDBOX" {
		t.Fatalf("DEV column = %v / %v", tbl.Rows[0][3], tbl.Rows[1][3])
	}
	if tbl.Rows[1][1] != "" {
		t.Fatalf("QA column should pad with empty cells, got %v", tbl.Rows[1][1])
	}

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Available environments:", "PROD", "SANDBOX"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered table missing %q:\n%s", want, out)
		}
	}
}
