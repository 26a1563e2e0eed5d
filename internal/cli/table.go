package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	brand  = color.New(color.FgHiMagenta, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
)

// printTable prints an aligned table. Cells may carry colour codes; widths
// are taken from the plain text in plain.
func printTable(w io.Writer, headers []string, plain, styled [][]string) {
	if len(plain) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range plain {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	head, sep := "  ", "  "
	for i, h := range headers {
		head += fmt.Sprintf("%-*s  ", widths[i], h)
		sep += strings.Repeat("─", widths[i]) + "  "
	}
	subtle.Fprintln(w, head)
	subtle.Fprintln(w, sep)

	for r, row := range plain {
		line := "  "
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			pad := strings.Repeat(" ", widths[i]-len([]rune(cell)))
			line += styled[r][i] + pad + "  "
		}
		fmt.Fprintln(w, line)
	}
}

// swatch renders a hex colour as a coloured block where the terminal allows.
func swatch(hex string) string {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	return color.RGB(r, g, b).Sprint("● " + hex)
}
