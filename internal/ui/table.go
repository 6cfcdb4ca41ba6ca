package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows of data in aligned columns. Cells may carry ANSI
// styling; widths are measured on the visible text.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a new table writer with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// Row appends a row of values. The number of values should match the number of headers.
func (t *Table) Row(values ...any) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	t.rows = append(t.rows, parts)
}

// Flush writes the header and every buffered row.
func (t *Table) Flush() error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = headerStyle.Render(h)
	}
	if err := t.line(header, widths); err != nil {
		return err
	}
	for _, r := range t.rows {
		if err := t.line(r, widths); err != nil {
			return err
		}
	}
	t.rows = nil
	return nil
}

func (t *Table) line(cells []string, widths []int) error {
	var b strings.Builder
	for i, c := range cells {
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c)+2))
		}
	}
	b.WriteByte('\n')
	_, err := io.WriteString(t.out, b.String())
	return err
}
