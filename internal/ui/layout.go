package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parley/internal/state"
)

const (
	headerHeight = 1
	footerHeight = 1

	minListWidth = 24
	maxListWidth = 42

	// settingsSummaryLines is the height of everything above the log pane.
	settingsSummaryLines = 12
)

// bodyHeight is the number of lines between the header and the footer.
func (m Model) bodyHeight() int {
	return max(1, m.height-headerHeight-footerHeight)
}

// listWidth is the width of the chat list pane beside an open conversation.
func (m Model) listWidth() int {
	return clampInt(m.width/3, minListWidth, maxListWidth)
}

func (m Model) chatRowHeight() int {
	if m.prefs.CompactChats {
		return 1
	}
	return 2
}

func (m Model) sessionCapacity() int {
	// Title and blank line.
	return Capacity(m.bodyHeight()-2, 1)
}

func (m Model) chatCapacity() int {
	return Capacity(m.bodyHeight()-2, m.chatRowHeight())
}

// layout sizes the viewports after a resize.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.messages.Width = max(10, m.width-m.listWidth()-1)
	m.messages.Height = max(1, m.bodyHeight()-2)
	m.logView.Width = max(10, m.width)
	m.logView.Height = max(1, m.bodyHeight()-settingsSummaryLines)

	m.moveSession(m.sessionIdx)
	m.moveChat(m.chatIdx)
	m.refreshMessages()
	m.updateLogView()
}

func (m Model) renderMain() string {
	var body string
	switch m.snapshot.View {
	case state.ViewSessions:
		body = m.renderSessions()
	case state.ViewChats:
		body = m.renderChats(m.width)
	case state.ViewConversation:
		body = m.renderConversation()
	case state.ViewSettings:
		body = m.renderSettings()
	case state.ViewQR:
		body = m.renderQR()
	}

	body = fitHeight(body, m.bodyHeight())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// fitHeight pads or cuts s to exactly height lines.
func fitHeight(s string, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
