// Package console renders CLI output.
package console

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table writes rows under header as a bordered table.
func Table(w io.Writer, header []string, rows [][]string) error {
	t := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	t.Header(cols...)
	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return err
		}
	}
	return t.Render()
}
