package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kode4food/kubetour/pkg/api"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(purple)
	activeStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1)
	idleStyle = lipgloss.NewStyle().
			Foreground(dim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(faint).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Foreground(red)
	mutedStyle = lipgloss.NewStyle().Foreground(dim)
	titleStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
)

func errorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

// renderStep draws the current step of a tour with every component the tour
// touches, highlighting the step's active tags
func renderStep(t *api.Tour, st api.SequencerState) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(t.Title))
	sb.WriteString("\n")

	if !st.IsStarted() {
		sb.WriteString(mutedStyle.Render("not started"))
		sb.WriteString("\n")
		return sb.String()
	}

	step := t.Steps[st.Index]
	progress := fmt.Sprintf("[%d/%d]", st.Index+1, len(t.Steps))
	sb.WriteString(accentStyle.Render(progress) + " " + step.Label + "\n")
	if step.Description != "" {
		sb.WriteString(mutedStyle.Render(step.Description) + "\n")
	}

	var boxes []string
	for _, tag := range tourTags(t) {
		style := idleStyle
		if step.IsActive(tag) {
			style = activeStyle
		}
		boxes = append(boxes, style.Render(string(tag)))
	}
	if len(boxes) > 0 {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
		sb.WriteString("\n")
	}
	return sb.String()
}

// tourTags returns every active tag used by the tour in first-seen order
func tourTags(t *api.Tour) []api.ComponentID {
	var res []api.ComponentID
	seen := map[api.ComponentID]bool{}
	for _, st := range t.Steps {
		for _, tag := range st.ActiveTags {
			if !seen[tag] {
				seen[tag] = true
				res = append(res, tag)
			}
		}
	}
	return res
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}
