package cli

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// renderTable writes rows to w as a borderless table, aligned to the left.
// Header cells are upper-cased.
func renderTable(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(true)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetTablePadding("   ")
	t.SetNoWhiteSpace(true)
	t.AppendBulk(rows)
	t.Render()
}
