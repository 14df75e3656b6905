// Package report renders titled, column-aligned text tables. The format is a
// compatibility contract with the tooling that consumes the logs: `=` rules
// sized to the widest value per column, numeric columns (declared with a
// trailing `#` in the column name) right-justified, everything else
// left-justified.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Table is one renderable report.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]any
	// Sorted sorts the stringified rows lexicographically before rendering.
	Sorted bool
}

// AddRow appends one row of arbitrary values; they are stringified at render
// time.
func (t *Table) AddRow(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table to w. Rendering the same table twice produces
// identical output.
func (t *Table) Render(w io.Writer) error {
	numeric := make([]bool, len(t.Columns))
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		numeric[i] = strings.Contains(col, "#")
		headers[i] = strings.ReplaceAll(col, "#", "")
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(row) {
				cells[i] = fmt.Sprint(row[i])
			}
		}
		rows = append(rows, cells)
	}
	if t.Sorted {
		sort.Slice(rows, func(i, j int) bool {
			return less(rows[i], rows[j])
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("=", w)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(t.Title)
	b.WriteString("\n")
	writeLine(&b, rule, widths, numeric)
	writeLine(&b, headers, widths, numeric)
	writeLine(&b, rule, widths, numeric)
	for _, row := range rows {
		writeLine(&b, row, widths, numeric)
	}
	writeLine(&b, rule, widths, numeric)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLine(b *strings.Builder, cells []string, widths []int, numeric []bool) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if numeric[i] {
			parts[i] = fmt.Sprintf("%*s", widths[i], cell)
		} else {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n")
}

func less(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
