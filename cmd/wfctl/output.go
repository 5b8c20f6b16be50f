package main

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/spec-kit/workforce-service/internal/scoring"
)

var (
	badgeGreen  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	badgeYellow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	badgeRed    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func badge(status scoring.StressStatus) string {
	switch status {
	case scoring.StatusRed:
		return badgeRed.Render(string(status))
	case scoring.StatusYellow:
		return badgeYellow.Render(string(status))
	case scoring.StatusGreen:
		return badgeGreen.Render(string(status))
	}
	return string(status)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)
	return tw
}
