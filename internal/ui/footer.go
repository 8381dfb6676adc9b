package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/five82/parley/internal/state"
)

// footerBindings lists the hints shown for the current view.
func (m Model) footerBindings() []key.Binding {
	k := m.keys
	switch m.snapshot.View {
	case state.ViewSessions:
		return []key.Binding{k.Select, k.NewSession, k.Refresh, k.ViewSettings}
	case state.ViewChats:
		return []key.Binding{k.Select, k.Back, k.ToggleCompact, k.Refresh}
	case state.ViewConversation:
		return []key.Binding{k.Select, k.PageUp, k.PageDown, k.Back}
	case state.ViewSettings:
		return []key.Binding{k.Up, k.Down, k.CycleTheme, k.Back}
	case state.ViewQR:
		return []key.Binding{k.PairPhone, k.Refresh, k.Back}
	}
	return nil
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	inner := max(0, m.width-2)

	if m.inputMode != inputNone {
		hint := styles.FaintText.Render("enter confirm · esc cancel")
		return styles.Footer.Width(m.width).Render(spread(m.input.View(), hint, inner))
	}

	var left string
	if m.flash != "" {
		if m.flashIsError {
			left = styles.DangerText.Render(m.flash)
		} else {
			left = styles.InfoText.Render(m.flash)
		}
	} else {
		parts := make([]string, 0, 4)
		for _, b := range m.footerBindings() {
			h := b.Help()
			parts = append(parts, styles.AccentText.Render(h.Key)+" "+h.Desc)
		}
		left = strings.Join(parts, "  ")
	}

	right := styles.AccentText.Render("?") + " help  " + styles.AccentText.Render("q") + " quit"
	return styles.Footer.Width(m.width).Render(spread(left, right, inner))
}
