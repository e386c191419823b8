package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rshep3087/ahorrista/config"
	"github.com/Rshep3087/ahorrista/detail"
	"github.com/Rshep3087/ahorrista/summary"
)

// Theme contains all the colors used throughout the application.
type Theme struct {
	Primary       lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
	Muted         lipgloss.Color
	Expense       lipgloss.Color
	Border        lipgloss.Color
	Text          lipgloss.Color
	SecondaryText lipgloss.Color
}

// newTheme creates a Theme from config.Colors.
func newTheme(colors config.Colors) Theme {
	return Theme{
		Primary:       parseColor(colors.Primary, "#2ec4b6"),
		Error:         parseColor(colors.Error, "#ff5555"),
		Success:       parseColor(colors.Success, "#22ba46"),
		Muted:         parseColor(colors.Muted, "#7f7d78"),
		Expense:       parseColor(colors.Expense, "#e05951"),
		Border:        parseColor(colors.Border, "#7D56F4"),
		Text:          parseColor(colors.Text, "#FAFAFA"),
		SecondaryText: parseColor(colors.SecondaryText, "#888888"),
	}
}

// parseColor returns colorStr as a lipgloss.Color, or defaultColor when it is
// empty. Hex ("#ff0000") and ANSI ("21") values are both accepted as-is.
func parseColor(colorStr, defaultColor string) lipgloss.Color {
	if colorStr == "" {
		return lipgloss.Color(defaultColor)
	}
	return lipgloss.Color(colorStr)
}

func (t Theme) summaryStyles() summary.Styles {
	return summary.Styles{
		Title:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Total:   lipgloss.NewStyle().Foreground(t.Expense).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(t.Muted),
		Error:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Summary: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(1, standardMargin),
	}
}

func (t Theme) detailStyles() detail.Styles {
	return detail.Styles{
		Header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Total:  lipgloss.NewStyle().Foreground(t.Expense).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(t.Muted),
		Error:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}
