package cli

// This file contains terminal rendering helpers shared by the commands.

import (
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/flinketl/etldash/view"
	"github.com/jedib0t/go-pretty/v6/table"
)

var variantStyles = map[view.Variant]lipgloss.Style{
	view.VariantPositive:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	view.VariantNegative:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	view.VariantInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	view.VariantNeutral:    lipgloss.NewStyle().Faint(true),
}

func styleStatus(p view.StatusPresentation) string {
	style, ok := variantStyles[p.Variant]
	if !ok {
		return p.String()
	}
	return style.Render(p.String())
}

func renderRunsTable(w io.Writer, rows []view.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Test ID", "Image Tag", "Status", "Result", "Start Time", "End Time"})
	for _, r := range rows {
		start := r.Start.Absolute
		if r.Start.Valid {
			start += " (" + r.Start.Relative + ")"
		}
		t.AppendRow(table.Row{r.ID, r.ImageTag, styleStatus(r.Status), styleStatus(r.Outcome), start, r.EndLabel})
	}
	t.Render()
}

func renderSummary(w io.Writer, s view.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Total", "Running", "Passed", "Failed", "Other"})
	t.AppendRow(table.Row{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Running),
		strconv.Itoa(s.Passed),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.Unclassified),
	})
	t.Render()
}
