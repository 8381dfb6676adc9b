package ui

import (
	"fmt"
	"strings"

	"github.com/five82/parley/internal/waha"
)

func (m Model) renderSessions() string {
	styles := m.theme.Styles()
	sessions := m.snapshot.Sessions

	var b strings.Builder
	b.WriteString(m.sectionTitle(fmt.Sprintf("Sessions (%d)", len(sessions)), m.width))
	b.WriteString("\n")

	if len(sessions) == 0 {
		b.WriteString(styles.MutedText.Render("No sessions. Press n to create one."))
		return b.String()
	}

	end := min(len(sessions), m.sessionOffset+m.sessionCapacity())
	for i := m.sessionOffset; i < end; i++ {
		b.WriteString(m.sessionRow(sessions[i], i == m.sessionIdx))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) sessionRow(s waha.SessionSummary, selected bool) string {
	styles := m.theme.Styles()

	badge := styles.SessionStyle(s.Status).Render(s.Status)
	left := waha.SessionStatusIcon(s.Status) + " " + s.Name
	if s.Me != nil {
		account := s.Me.PushName
		if account == "" {
			account = waha.FormatPhoneNumber(s.Me.ID)
		}
		left += "  " + account
	}

	if selected {
		return styles.Selected.Render(spread("▌"+left, s.Status+" ", m.width))
	}
	return spread(" "+left, badge, m.width)
}
