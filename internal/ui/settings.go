package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderSettings shows the effective configuration above a tail of the
// debug log.
func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(16)

	session := m.config.DefaultSession
	if session == "" {
		session = "(first working)"
	}
	prefsPath := m.prefsPath
	if prefsPath == "" {
		prefsPath = "(not saved)"
	}
	compact := "off"
	if m.prefs.CompactChats {
		compact = "on"
	}

	rows := [][2]string{
		{"WAHA URL", m.config.WAHAURL},
		{"API key", m.config.MaskedKey()},
		{"Default session", session},
		{"Polling", fmt.Sprintf("chats %s, messages %s", m.config.ChatsPollInterval, m.config.MessagesPollInterval)},
		{"Log file", m.config.LogFile},
		{"Theme", fmt.Sprintf("%s (compact list %s)", m.theme.Name, compact)},
		{"Preferences", prefsPath},
	}

	var b strings.Builder
	b.WriteString(m.sectionTitle("Settings", m.width))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(label.Render(row[0]))
		b.WriteString(styles.Text.Render(truncate(row[1], max(1, m.width-16))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.sectionTitle("Debug log", m.width))
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	return b.String()
}

// updateLogView renders the parsed log tail into the log viewport, keeping it
// at the bottom when it already was.
func (m *Model) updateLogView() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()
	atBottom := m.logView.AtBottom() || m.logView.TotalLineCount() == 0

	if len(m.logEntries) == 0 {
		m.logView.SetContent(styles.MutedText.Render("No log output yet"))
		return
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		if !e.Structured() {
			lines = append(lines, styles.FaintText.Render(truncate(e.Raw, m.logView.Width)))
			continue
		}
		ts := "--:--:--"
		if !e.Time.IsZero() {
			ts = e.Time.Local().Format("15:04:05")
		}
		level := m.levelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level))
		prefix := styles.FaintText.Render(ts) + " " + level + " "
		lines = append(lines, prefix+truncate(e.Summary(), max(1, m.logView.Width-lipgloss.Width(prefix))))
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.logView.GotoBottom()
	}
}

func (m Model) levelStyle(level string) lipgloss.Style {
	styles := m.theme.Styles()
	switch strings.ToUpper(level) {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}
