package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// NewRenderer returns a function that renders markdown bot messages
// using glamour, auto-detecting light/dark terminal backgrounds.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// FormatPrefix returns the colored transcript prefix for a chat role.
func FormatPrefix(role domain.Role) string {
	p := termenv.ColorProfile()
	switch role {
	case domain.RoleUser:
		return termenv.String("you ›").Foreground(p.Color("#34d399")).Bold().String()
	case domain.RoleBot:
		return termenv.String("bot ›").Foreground(p.Color("#818cf8")).Bold().String()
	default:
		return termenv.String("sys ›").Foreground(p.Color("#9ca3af")).Faint().String()
	}
}

// FormatDebug returns a dimmed, level-tagged debug line.
func FormatDebug(msg domain.DebugMessage) string {
	p := termenv.ColorProfile()
	color := "#9ca3af"
	switch msg.Level {
	case domain.LevelWarning:
		color = "#fbbf24"
	case domain.LevelError:
		color = "#f87171"
	}
	tag := termenv.String(fmt.Sprintf("[%s]", msg.Level)).Foreground(p.Color(color)).String()
	return fmt.Sprintf("%s %s", tag, msg.Content)
}
