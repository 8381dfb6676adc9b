package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parley/internal/waha"
)

func (m Model) renderConversation() string {
	styles := m.theme.Styles()
	height := m.bodyHeight()
	listWidth := m.listWidth()

	list := lipgloss.NewStyle().Width(listWidth).Render(fitHeight(m.renderChats(listWidth), height))
	divider := styles.Divider.Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.sectionTitle(m.chatTitle(), m.messages.Width),
		m.messages.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, divider, right)
}

func (m Model) chatTitle() string {
	for _, chat := range m.snapshot.Chats {
		if chat.ID == m.snapshot.ChatID {
			return chat.DisplayName()
		}
	}
	return waha.FormatPhoneNumber(m.snapshot.ChatID)
}

// refreshMessages re-renders the open chat into the viewport. The view stays
// pinned to the newest message unless the user scrolled away from it.
func (m *Model) refreshMessages() {
	if !m.ready {
		return
	}
	chatID := m.snapshot.ChatID
	if chatID != m.shownChat {
		m.shownChat = chatID
		m.followTail = true
	}
	if chatID == "" {
		m.messages.SetContent("")
		return
	}

	m.messages.SetContent(m.renderMessages(m.snapshot.ChatMessages(), m.messages.Width, time.Now()))
	if m.followTail {
		m.messages.GotoBottom()
	}
}

func (m Model) renderMessages(messages []waha.Message, width int, now time.Time) string {
	styles := m.theme.Styles()
	if len(messages) == 0 {
		return styles.MutedText.Render("No messages yet")
	}

	// Bubbles take at most three quarters of the pane; two cells of padding.
	bubbleWidth := max(8, width*3/4)
	textWidth := bubbleWidth - 2

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, m.renderBubble(msg, width, textWidth, now))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderBubble(msg waha.Message, width, textWidth int, now time.Time) string {
	styles := m.theme.Styles()

	body := strings.TrimRight(msg.Body, "\n")
	if body == "" && msg.HasMedia {
		body = "[media]"
	}
	body = wrapText(body, textWidth)

	meta := formatClock(msg.Time(), now)
	if icon := msg.StatusIcon(); icon != "" {
		ack := styles.FaintText
		if msg.Seen() {
			ack = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ReadReceipt))
		}
		meta += " " + ack.Render(icon)
	}

	if msg.FromMe {
		content := lipgloss.JoinVertical(lipgloss.Right, body, styles.FaintText.Render(meta))
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, styles.Outgoing.Render(content))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, body, styles.FaintText.Render(meta))
	return lipgloss.PlaceHorizontal(width, lipgloss.Left, styles.Incoming.Render(content))
}
