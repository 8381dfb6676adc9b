package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parley/internal/qr"
)

var pairingSteps = []string{
	"1. Open WhatsApp on your phone",
	"2. Tap Menu or Settings and select Linked Devices",
	"3. Tap Link a device and point your phone at this screen",
}

// renderQR shows the pairing instructions and the QR code of the active
// session, or the phone pairing code once one was requested.
func (m Model) renderQR() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.sectionTitle("Link device: "+m.snapshot.SessionID, m.width))
	b.WriteString("\n")
	for _, step := range pairingSteps {
		b.WriteString(styles.MutedText.Render(step))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if code := m.snapshot.PairingCode; code != "" {
		b.WriteString(styles.Text.Render("Pairing code: "))
		b.WriteString(styles.AccentText.Bold(true).Render(code))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Choose Link with phone number instead on your phone and enter this code."))
		b.WriteString("\n\n")
	}

	if len(m.snapshot.QR) == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(styles.MutedText.Render(" Waiting for QR code..."))
		return b.String()
	}

	// Scanners expect dark modules on a light field, so the light modules
	// and the quiet zone are the ones drawn.
	lines, err := qr.Render(qr.Invert(m.snapshot.QR), qr.DefaultPadding)
	if err != nil {
		b.WriteString(styles.DangerText.Render("Cannot draw QR code: " + err.Error()))
		return b.String()
	}

	if lipgloss.Width(lines[0]) > m.width || len(lines)+len(pairingSteps)+3 > m.bodyHeight() {
		b.WriteString(styles.WarningText.Render("Enlarge the terminal to show the whole code, or press p to pair with a phone number."))
		b.WriteString("\n")
	}

	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = styles.QR.Render(line)
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(rendered, "\n")))
	return b.String()
}
