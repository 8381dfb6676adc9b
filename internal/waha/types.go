package waha

import (
	"errors"
	"strings"
	"time"
)

// Session status values reported by WAHA.
const (
	SessionStopped  = "STOPPED"
	SessionStarting = "STARTING"
	SessionScanQR   = "SCAN_QR_CODE"
	SessionWorking  = "WORKING"
	SessionFailed   = "FAILED"
)

var errMissingID = errors.New("missing id")

// SessionSummary mirrors an entry of /api/sessions.
type SessionSummary struct {
	Name   string       `json:"name"`
	Status string       `json:"status"`
	Me     *SessionUser `json:"me,omitempty"`
}

// SessionUser identifies the account a session is logged in as.
type SessionUser struct {
	ID       string `json:"id"`
	PushName string `json:"pushName"`
}

// Validate reports whether the session can be merged into state.
func (s SessionSummary) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("session: missing name")
	}
	return nil
}

// Working reports whether the session is authenticated and running.
func (s SessionSummary) Working() bool {
	return s.Status == SessionWorking
}

// ChatSummary mirrors an entry of /api/{session}/chats/overview.
type ChatSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Picture     string          `json:"picture,omitempty"`
	LastMessage *MessagePreview `json:"lastMessage,omitempty"`
	UnreadCount int             `json:"unreadCount,omitempty"`
}

// MessagePreview is the trimmed last message embedded in a chat overview.
type MessagePreview struct {
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	FromMe    bool   `json:"fromMe"`
}

// Validate reports whether the chat can be merged into state.
func (c ChatSummary) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errMissingID
	}
	return nil
}

// DisplayName returns the chat name, falling back to a formatted id.
func (c ChatSummary) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return FormatPhoneNumber(c.ID)
}

// LastActivity returns the timestamp of the last message, zero when unknown.
func (c ChatSummary) LastActivity() time.Time {
	if c.LastMessage == nil || c.LastMessage.Timestamp <= 0 {
		return time.Time{}
	}
	return time.Unix(c.LastMessage.Timestamp, 0)
}

// Message mirrors an entry of /api/{session}/chats/{chat}/messages.
type Message struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	From      string `json:"from"`
	FromMe    bool   `json:"fromMe"`
	Body      string `json:"body"`
	HasMedia  bool   `json:"hasMedia"`
	Ack       int    `json:"ack"`
	AckName   string `json:"ackName"`
}

// Validate reports whether the message can be merged into state.
func (m Message) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errMissingID
	}
	return nil
}

// Time returns the message timestamp.
func (m Message) Time() time.Time {
	if m.Timestamp <= 0 {
		return time.Time{}
	}
	return time.Unix(m.Timestamp, 0)
}

// StatusIcon returns the delivery glyph for outgoing messages.
func (m Message) StatusIcon() string {
	if !m.FromMe {
		return ""
	}
	switch strings.ToUpper(m.AckName) {
	case "PENDING":
		return "⏱"
	case "SERVER":
		return "✓"
	case "DEVICE", "READ", "PLAYED":
		return "✓✓"
	case "ERROR":
		return "✗"
	}
	switch {
	case m.Ack < 0:
		return "✗"
	case m.Ack == 0:
		return "⏱"
	case m.Ack == 1:
		return "✓"
	default:
		return "✓✓"
	}
}

// Seen reports whether an outgoing message was read or played.
func (m Message) Seen() bool {
	if !m.FromMe {
		return false
	}
	switch strings.ToUpper(m.AckName) {
	case "READ", "PLAYED":
		return true
	case "":
		return m.Ack >= 3
	}
	return false
}

// Profile mirrors /api/{session}/profile.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Validate reports whether the profile can be merged into state.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errMissingID
	}
	return nil
}

type qrResponse struct {
	Value string `json:"value"`
}

type pairingRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Method      *string `json:"method"`
}

type pairingResponse struct {
	Code string `json:"code"`
}

type createSessionRequest struct {
	Name   string        `json:"name"`
	Start  bool          `json:"start"`
	Config sessionConfig `json:"config"`
}

type sessionConfig struct {
	Noweb nowebConfig `json:"noweb"`
}

type nowebConfig struct {
	Store      nowebStore `json:"store"`
	MarkOnline bool       `json:"markOnline"`
}

type nowebStore struct {
	Enabled  bool `json:"enabled"`
	FullSync bool `json:"fullSync"`
}

// FormatPhoneNumber renders a chat id like "12132132130@c.us" as "+1 213 213 2130".
func FormatPhoneNumber(chatID string) string {
	number := chatID
	if at := strings.IndexByte(number, '@'); at >= 0 {
		number = number[:at]
	}
	if len(number) <= 10 {
		return number
	}
	n := len(number)
	return "+" + number[:n-10] + " " + number[n-10:n-7] + " " + number[n-7:n-4] + " " + number[n-4:]
}

// SessionStatusIcon returns a colored dot for a session status.
func SessionStatusIcon(status string) string {
	switch status {
	case SessionWorking:
		return "🟢"
	case SessionStarting, SessionScanQR:
		return "🟡"
	case SessionFailed, SessionStopped:
		return "🔴"
	default:
		return "⚪"
	}
}
