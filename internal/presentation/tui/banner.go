package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Espalier.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []string{
		`                      _ _`,
		`   ___  ___ _ __  __ _| (_) ___ _ __`,
		`  / _ \/ __| '_ \/ _' | | |/ _ \ '__|`,
		` |  __/\__ \ |_) | (_| | | |  __/ |`,
		`  \___||___/ .__/\__,_|_|_|\___|_|`,
		`           |_|`,
	}
	// Green-to-teal gradient, one color per line.
	colors := []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i%len(colors)])))
	}
	fmt.Println()
}
