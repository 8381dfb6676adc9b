package qr

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Glyphs used to draw two matrix rows per terminal line.
const (
	Full  = '█'
	Upper = '▀'
	Lower = '▄'
	Empty = ' '
)

// DefaultPadding is the quiet zone, in modules, drawn around a code.
const DefaultPadding = 4

// ErrInvalidInput reports a matrix Render cannot draw.
var ErrInvalidInput = errors.New("invalid qr matrix")

// Render packs a square module matrix (true = dark) into text rows. Every
// glyph covers two vertically stacked modules; a missing partner below the
// last row of an odd-sized matrix counts as light. The code is framed by
// padding Full glyphs on the left and right, padding/2 Full rows above and
// the remaining padding-padding/2 rows below, so the result always has
// ceil(N/2)+padding rows of N+2*padding glyphs.
func Render(matrix [][]bool, padding int) ([]string, error) {
	n := len(matrix)
	if n == 0 {
		return nil, fmt.Errorf("render: empty matrix: %w", ErrInvalidInput)
	}
	if padding < 0 {
		return nil, fmt.Errorf("render: negative padding %d: %w", padding, ErrInvalidInput)
	}
	for y, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("render: row %d has %d modules, want %d: %w", y, len(row), n, ErrInvalidInput)
		}
	}

	width := n + 2*padding
	quiet := strings.Repeat(string(Full), width)
	side := strings.Repeat(string(Full), padding)

	rows := make([]string, 0, (n+1)/2+padding)
	for i := 0; i < padding/2; i++ {
		rows = append(rows, quiet)
	}

	var b strings.Builder
	for y := 0; y < n; y += 2 {
		b.Reset()
		b.WriteString(side)
		for x := 0; x < n; x++ {
			upper := matrix[y][x]
			lower := y+1 < n && matrix[y+1][x]
			b.WriteRune(glyph(upper, lower))
		}
		b.WriteString(side)
		rows = append(rows, b.String())
	}

	for i := 0; i < padding-padding/2; i++ {
		rows = append(rows, quiet)
	}
	return rows, nil
}

func glyph(upper, lower bool) rune {
	switch {
	case upper && lower:
		return Full
	case upper:
		return Upper
	case lower:
		return Lower
	default:
		return Empty
	}
}

// Matrix encodes value as a QR code and returns its modules without a quiet
// zone; Render draws that.
func Matrix(value string) ([][]bool, error) {
	if value == "" {
		return nil, fmt.Errorf("encode qr: empty value: %w", ErrInvalidInput)
	}
	code, err := qrcode.New(value, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code.DisableBorder = true
	return code.Bitmap(), nil
}

// Invert swaps dark and light modules. Terminals draw glyphs in the
// foreground colour, so a light-on-dark display renders the inverted matrix.
func Invert(matrix [][]bool) [][]bool {
	out := make([][]bool, len(matrix))
	for y, row := range matrix {
		out[y] = make([]bool, len(row))
		for x, dark := range row {
			out[y][x] = !dark
		}
	}
	return out
}
