package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/parley/internal/waha"
)

// renderChats renders the chat list in width cells, one or two lines per
// chat depending on the compact preference.
func (m Model) renderChats(width int) string {
	styles := m.theme.Styles()
	chats := m.snapshot.Chats

	var b strings.Builder
	b.WriteString(m.sectionTitle(fmt.Sprintf("Chats (%d)", len(chats)), width))
	b.WriteString("\n")

	if len(chats) == 0 {
		b.WriteString(styles.MutedText.Render("No chats yet"))
		return b.String()
	}

	now := time.Now()
	end := min(len(chats), m.chatOffset+m.chatCapacity())
	for i := m.chatOffset; i < end; i++ {
		b.WriteString(m.chatRow(chats[i], i == m.chatIdx, width, now))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) chatRow(chat waha.ChatSummary, selected bool, width int, now time.Time) string {
	styles := m.theme.Styles()

	name := chat.DisplayName()
	when := formatRelativeTime(chat.LastActivity(), now)
	preview := chatPreview(chat)

	unread := ""
	if chat.UnreadCount > 0 {
		unread = strconv.Itoa(chat.UnreadCount)
	}

	// One cell for the selection marker.
	inner := max(1, width-1)
	marker := " "
	if selected {
		marker = "▌"
	}

	var lines []string
	if m.prefs.CompactChats {
		right := when
		if unread != "" {
			right = unread + " " + when
		}
		left := name
		if preview != "" {
			left += " · " + preview
		}
		lines = []string{spread(left, right, inner)}
	} else {
		lines = []string{
			spread(name, when, inner),
			spread(preview, unread, inner),
		}
	}

	for i, line := range lines {
		line = marker + line
		switch {
		case selected:
			lines[i] = styles.Selected.Render(padRight(line, width))
		case i == 0:
			lines[i] = styles.Text.Render(line)
		default:
			lines[i] = styles.MutedText.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// chatPreview returns the first line of the last message.
func chatPreview(chat waha.ChatSummary) string {
	if chat.LastMessage == nil {
		return ""
	}
	body := firstLine(chat.LastMessage.Body)
	if body == "" {
		body = "[media]"
	}
	if chat.LastMessage.FromMe {
		return "You: " + body
	}
	return body
}
