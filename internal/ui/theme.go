package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	IconCloud = "☁️"
	IconPop   = "💥"
	IconTag   = "🏷️"
	IconClock = "⏰"
	IconGear  = "⚙️"
	IconBox   = "📦"
	IconError = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("81")  // sky
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// ChoreState colours a chore's lifecycle state: live, due or waiting.
func ChoreState(live, due bool) string {
	switch {
	case live:
		return Good.Render("live")
	case due:
		return Warn.Render("due")
	default:
		return Muted.Render("waiting")
	}
}

// Days renders a fractional day count compactly.
func Days(d float64) string {
	if d < 1 {
		return fmt.Sprintf("%.1fh", d*24)
	}
	return fmt.Sprintf("%.1fd", d)
}
