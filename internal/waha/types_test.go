package waha

import "testing"

func TestFormatPhoneNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12132132130@c.us", "+1 213 213 2130"},
		{"447700900123@c.us", "+44 770 090 0123"},
		{"2132132130@c.us", "2132132130"},
		{"123", "123"},
	}
	for _, tc := range cases {
		if got := FormatPhoneNumber(tc.in); got != tc.want {
			t.Fatalf("FormatPhoneNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMessageStatusIcon(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want string
	}{
		{"incoming", Message{FromMe: false, Ack: 3}, ""},
		{"pending", Message{FromMe: true, AckName: "PENDING"}, "⏱"},
		{"server", Message{FromMe: true, AckName: "SERVER"}, "✓"},
		{"read", Message{FromMe: true, AckName: "READ"}, "✓✓"},
		{"error", Message{FromMe: true, Ack: -1}, "✗"},
		{"ack fallback", Message{FromMe: true, Ack: 2}, "✓✓"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.StatusIcon(); got != tc.want {
				t.Fatalf("StatusIcon() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestChatSummaryDisplayName(t *testing.T) {
	if got := (ChatSummary{ID: "12132132130@c.us", Name: " "}).DisplayName(); got != "+1 213 213 2130" {
		t.Fatalf("DisplayName() = %q, want formatted phone", got)
	}
	if got := (ChatSummary{ID: "x", Name: "Ada"}).DisplayName(); got != "Ada" {
		t.Fatalf("DisplayName() = %q, want Ada", got)
	}
	if !(ChatSummary{}).LastActivity().IsZero() {
		t.Fatalf("LastActivity() without message should be zero")
	}
}

func TestMessageSeen(t *testing.T) {
	tests := []struct {
		msg  Message
		want bool
	}{
		{Message{FromMe: true, AckName: "READ"}, true},
		{Message{FromMe: true, AckName: "played"}, true},
		{Message{FromMe: true, AckName: "DEVICE", Ack: 3}, false},
		{Message{FromMe: true, Ack: 3}, true},
		{Message{FromMe: true, Ack: 2}, false},
		{Message{FromMe: false, AckName: "READ"}, false},
	}
	for _, tt := range tests {
		if got := tt.msg.Seen(); got != tt.want {
			t.Fatalf("Seen(%+v) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
