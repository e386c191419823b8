package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// newItemDelegate styles the transaction list of the detail screen.
func newItemDelegate(theme Theme) list.DefaultDelegate {
	primary := lipgloss.AdaptiveColor{Light: string(theme.Primary), Dark: string(theme.Primary)}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(primary).
		Foreground(primary).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: string(theme.Expense), Dark: string(theme.Expense)})

	d.Styles.NormalDesc = d.Styles.NormalDesc.Foreground(theme.SecondaryText)

	return d
}
