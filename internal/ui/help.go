package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const helpWidth = 44

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyCol := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(10)
	heading := styles.AccentText.Bold(true)

	blocks := []string{
		styles.Title.Render("Keyboard Shortcuts") + "\n" +
			styles.FaintText.Render(strings.Repeat("─", helpWidth-14)),
	}
	for _, sec := range m.keys.sections() {
		rows := []string{heading.Render(sec.title)}
		for _, binding := range sec.bindings {
			h := binding.Help()
			rows = append(rows, keyCol.Render(h.Key)+styles.Text.Render(h.Desc))
		}
		blocks = append(blocks, strings.Join(rows, "\n"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(helpWidth).
		Render(strings.Join(blocks, "\n\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
