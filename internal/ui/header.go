package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parley/internal/state"
)

// renderHeader renders the status bar: logo, view, session and account on
// the left, connection state on the right.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	left := styles.Logo.Render("parley") + styles.MutedText.Render(" · "+viewTitle(snap.View))
	if snap.SessionID != "" {
		left += styles.FaintText.Render("  session ") + styles.Text.Render(snap.SessionID)
	}
	if snap.Profile != nil && snap.Profile.Name != "" {
		left += styles.FaintText.Render("  as ") + styles.Text.Render(snap.Profile.Name)
	}

	right := m.connectionLabel()

	inner := max(0, m.width-2)
	return styles.Header.Width(m.width).Render(spread(left, right, inner))
}

func (m Model) connectionLabel() string {
	styles := m.theme.Styles()
	switch m.snapshot.Connection {
	case state.StatusConnecting:
		return m.spinner.View() + styles.WarningText.Render(" connecting")
	case state.StatusConnected:
		return styles.SuccessText.Render("● connected")
	case state.StatusError:
		msg := "error"
		if m.snapshot.ErrorMessage != "" {
			msg = truncate(firstLine(m.snapshot.ErrorMessage), max(10, m.width/3))
		}
		return styles.DangerText.Render("✗ " + msg)
	default:
		return styles.FaintText.Render("○ disconnected")
	}
}

func viewTitle(v state.View) string {
	switch v {
	case state.ViewSessions:
		return "Sessions"
	case state.ViewChats:
		return "Chats"
	case state.ViewConversation:
		return "Conversation"
	case state.ViewSettings:
		return "Settings"
	case state.ViewQR:
		return "Link device"
	default:
		return ""
	}
}

// sectionTitle renders a bold title with a rule under it.
func (m Model) sectionTitle(title string, width int) string {
	styles := m.theme.Styles()
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(truncate(title, width)),
		styles.Divider.Render(strings.Repeat("─", max(0, width))),
	)
}
