// Package ui provides terminal styling for ft CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/featrack/featrack/internal/types"
)

// Ayu theme color palette
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
)

// stateStyles maps each lifecycle state to a display style: active work in
// accent, done-ish states in green, parked states muted.
var stateStyles = map[types.State]lipgloss.Style{
	types.StatePlanned:    MutedStyle,
	types.StateInProgress: AccentStyle,
	types.StateTesting:    WarnStyle,
	types.StateReview:     WarnStyle,
	types.StateDeployed:   PassStyle,
	types.StateSummarised: PassStyle,
	types.StateArchived:   MutedStyle,
}

// ColorEnabled reports whether styled output should be emitted. Honors
// NO_COLOR and dumb terminals via termenv.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// RenderState renders a state name with its semantic color.
func RenderState(s types.State) string {
	if !ColorEnabled() {
		return string(s)
	}
	if style, ok := stateStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	if !ColorEnabled() {
		return s
	}
	return PassStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	if !ColorEnabled() {
		return s
	}
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	if !ColorEnabled() {
		return s
	}
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	if !ColorEnabled() {
		return s
	}
	return AccentStyle.Render(s)
}
