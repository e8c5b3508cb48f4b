package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/mongotriage/internal/adaptive"
)

// resultWidth is the width of the rendered result block.
const resultWidth = 60

// Lipgloss styles for the rendered diagnosis
var (
	// Title style - bold bright cyan
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	// Label style - dim cyan
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	// Value style - bright white
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	// Rule style - for separator lines
	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// Warning style - for the no-answer sentinel
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)
)

// renderOutcome formats a triage outcome for the terminal. Outcomes without
// a confident answer render as a single sentinel line.
func renderOutcome(outcome *adaptive.Outcome) string {
	if outcome == nil || !outcome.Found {
		return "\n " + warnStyle.Render("No confident answer found.")
	}

	rule := ruleStyle.Render(strings.Repeat("=", resultWidth))
	divider := ruleStyle.Render(strings.Repeat("-", resultWidth))

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString(titleStyle.Render(" ADAPTIVE RETRIEVAL RESULT") + "\n")
	b.WriteString(rule + "\n\n")
	b.WriteString(labelStyle.Render(" Winning Strategy : ") + valueStyle.Render(string(outcome.Strategy)) + "\n")
	b.WriteString(labelStyle.Render(" Confidence       : ") + valueStyle.Render(fmt.Sprintf("%.2f", outcome.Confidence)) + "\n\n")
	b.WriteString(divider + "\n")
	b.WriteString(strings.TrimSpace(outcome.Answer) + "\n")
	b.WriteString(rule)

	return b.String()
}
