package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"projectdocs/internal/core/app"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

func printSummary(w io.Writer, res *app.Result, written []string, injected []app.Injection) {
	p := res.Project
	fmt.Fprintln(w, titleStyle.Render("projectdocs: "+p.Name))
	fmt.Fprintf(w, "Files: %d  Modules: %d  Classes: %d  Functions: %d\n",
		res.Total, len(p.Modules), p.ClassCount(), p.FunctionCount())
	fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf("Parsed %d of %d files in %v", res.Parsed, res.Total, res.Elapsed.Round(time.Millisecond))))

	if len(written) > 0 {
		fmt.Fprintln(w, "Wrote:")
		for _, path := range written {
			fmt.Fprintf(w, "   %s\n", path)
		}
	}

	for _, inj := range injected {
		kinds := make([]string, 0, len(inj.Kinds))
		for _, k := range inj.Kinds {
			kinds = append(kinds, string(k))
		}
		fmt.Fprintf(w, "Updated %s (%s)\n", inj.Path, strings.Join(kinds, ", "))
	}

	if len(p.Diagnostics) == 0 {
		fmt.Fprintln(w, successStyle.Render("No diagnostics."))
		return
	}
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d DIAGNOSTICS:", len(p.Diagnostics))))
	fmt.Fprint(w, renderDiagnosticsTable(res))
}

func renderDiagnosticsTable(res *app.Result) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Message"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, d := range res.Project.Diagnostics {
		path := d.Path
		if path == "" {
			path = "-"
		}
		table.Append([]string{path, strings.TrimSpace(d.Message)})
	}
	table.Render()

	return buf.String()
}
