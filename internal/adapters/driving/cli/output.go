package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 120

// printTable writes rows as a borderless left-aligned table.
func printTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// terminalWidth returns the width of stdout, or defaultWidth.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// datasetRows renders records as table rows sized to the terminal.
func datasetRows(records []domain.Dataset, width int) [][]string {
	titleWidth := max(20, width/3)
	sourceWidth := max(12, width/5)

	rows := make([][]string, 0, len(records))
	for i := range records {
		d := &records[i]
		rows = append(rows, []string{
			truncate(d.Title, titleWidth),
			truncate(d.SourceName, sourceWidth),
			d.FileType,
			d.DateUpdated,
			truncate(strings.Join(d.Tags, ", "), sourceWidth),
		})
	}
	return rows
}

var datasetHeader = []string{"Title", "Source", "Type", "Updated", "Tags"}

// printProvenance notes on w when the records are not live.
func printProvenance(w io.Writer, snap *domain.Snapshot) {
	if snap == nil || snap.Provenance == domain.ProvenanceLive {
		return
	}
	fmt.Fprintf(w, "(%s)\n", snap.Provenance.Description())
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
