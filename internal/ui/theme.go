package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parley/internal/waha"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and footer bars
	SurfaceAlt string // Side panels

	// Selection
	SelectionBg   string
	SelectionText string

	// Borders
	Border      string
	BorderFocus string

	// Text
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Conversation
	Outgoing    string // Own message bubble
	Incoming    string // Other party's bubble
	ReadReceipt string // Ack icon once read
	QRLight     string // Light QR modules and quiet zone
	QRDark      string // Dark QR modules

	// SessionColors maps WAHA session statuses to badge colors.
	SessionColors map[string]string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// bar is a padded strip of text on a solid background.
func bar(bg, text string) lipgloss.Style {
	return fg(text).Background(lipgloss.Color(bg)).Padding(0, 1)
}

// Styles builds the lipgloss styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   bar(t.Surface, t.Text),
		Footer:   bar(t.Surface, t.Muted),
		Logo:     fg(t.Accent).Bold(true),
		Selected: fg(t.SelectionText).Background(lipgloss.Color(t.SelectionBg)),
		Title:    fg(t.Text).Bold(true),
		Outgoing: bar(t.Outgoing, t.Text),
		Incoming: bar(t.Incoming, t.Text),
		QR:       fg(t.QRLight).Background(lipgloss.Color(t.QRDark)),
		Divider:  fg(t.Border),

		sessionColors: t.SessionColors,
		background:    t.Background,
		muted:         t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	// Components
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Title    lipgloss.Style
	Outgoing lipgloss.Style
	Incoming lipgloss.Style
	QR       lipgloss.Style
	Divider  lipgloss.Style

	sessionColors map[string]string
	background    string
	muted         string
}

// SessionStyle returns a badge style for a WAHA session status.
func (s Styles) SessionStyle(status string) lipgloss.Style {
	color := s.sessionColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

var themes = map[string]Theme{
	"Whatsapp":       whatsappTheme(),
	"Whatsapp Light": whatsappLightTheme(),
	"Nightfox":       nightfoxTheme(),
}

var themeOrder = []string{"Whatsapp", "Whatsapp Light", "Nightfox"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return whatsappTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func whatsappTheme() Theme {
	// WhatsApp Web dark palette
	return Theme{
		Name: "Whatsapp",

		Background: "#111b21", // app background
		Surface:    "#202c33", // panel header
		SurfaceAlt: "#111b21",

		SelectionBg:   "#2a3942", // hovered chat
		SelectionText: "#e9edef",

		Border:      "#2a3942",
		BorderFocus: "#00a884",

		Text:    "#e9edef", // primary
		Muted:   "#8696a0", // secondary
		Faint:   "#667781", // tertiary
		Accent:  "#00a884", // green
		Success: "#25d366",
		Warning: "#ffd279",
		Danger:  "#ef5350",
		Info:    "#53bdeb",

		Outgoing:    "#005c4b",
		Incoming:    "#202c33",
		ReadReceipt: "#53bdeb",
		QRLight:     "#ffffff",
		QRDark:      "#111b21",

		SessionColors: map[string]string{
			waha.SessionWorking:  "#25d366",
			waha.SessionStarting: "#ffd279",
			waha.SessionScanQR:   "#ffd279",
			waha.SessionFailed:   "#ef5350",
			waha.SessionStopped:  "#8696a0",
		},
	}
}

func whatsappLightTheme() Theme {
	// WhatsApp Web light palette
	return Theme{
		Name: "Whatsapp Light",

		Background: "#ffffff",
		Surface:    "#f0f2f5",
		SurfaceAlt: "#ffffff",

		SelectionBg:   "#e9edef",
		SelectionText: "#111b21",

		Border:      "#d1d7db",
		BorderFocus: "#008069",

		Text:    "#111b21",
		Muted:   "#54656f",
		Faint:   "#8696a0",
		Accent:  "#008069",
		Success: "#1fa855",
		Warning: "#c68a00",
		Danger:  "#d92d20",
		Info:    "#027eb5",

		Outgoing:    "#d9fdd3",
		Incoming:    "#f0f2f5",
		ReadReceipt: "#027eb5",
		QRLight:     "#ffffff",
		QRDark:      "#111b21",

		SessionColors: map[string]string{
			waha.SessionWorking:  "#1fa855",
			waha.SessionStarting: "#c68a00",
			waha.SessionScanQR:   "#c68a00",
			waha.SessionFailed:   "#d92d20",
			waha.SessionStopped:  "#8696a0",
		},
	}
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan

		Outgoing:    "#29394f", // bg3
		Incoming:    "#212e3f", // bg2
		ReadReceipt: "#63cdcf",
		QRLight:     "#ffffff",
		QRDark:      "#131a24",

		SessionColors: map[string]string{
			waha.SessionWorking:  "#81b29a",
			waha.SessionStarting: "#dbc074",
			waha.SessionScanQR:   "#f4a261", // orange
			waha.SessionFailed:   "#c94f6d",
			waha.SessionStopped:  "#738091",
		},
	}
}
