package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ConfidenceIndicator returns a colored label such as "● HIGH".
func ConfidenceIndicator(c intelligence.Confidence) string {
	switch c {
	case intelligence.ConfidenceHigh:
		return StyleGreen.Render("● HIGH")
	case intelligence.ConfidenceMedium:
		return StyleYellow.Render("● MEDIUM")
	default:
		return StyleRed.Render("● LOW")
	}
}

// StatePill renders what happens next with a command.
func StatePill(s intelligence.ExecutionState) string {
	switch s {
	case intelligence.StateExecuted:
		return StyleGreen.Render("✔ ready")
	case intelligence.StateNeedsConfirmation:
		return StyleYellow.Render("? needs confirmation")
	case intelligence.StateNeedsClarification:
		return StyleRed.Render("✖ needs clarification")
	default:
		return StyleDim.Render(string(s))
	}
}

// CategoryBadge colors an activity category.
func CategoryBadge(c domain.Category) string {
	switch c {
	case domain.CategoryPhysical:
		return StyleGreen.Render(string(c))
	case domain.CategorySocial:
		return StyleYellow.Render(string(c))
	case domain.CategoryCreative:
		return StylePurple.Render(string(c))
	case domain.CategoryAcademic:
		return StyleBlue.Render(string(c))
	case "":
		return StyleDim.Render("--")
	default:
		return StyleDim.Render(string(c))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
