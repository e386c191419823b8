package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")

	switch m.sessionState {
	case loginState, registerState:
		b.WriteString(authView(m))
	case summaryState:
		b.WriteString(m.withSpinner(m.summary.View()))
	case detailState:
		b.WriteString(m.withSpinner(m.detail.View()))
	case newExpenseState:
		b.WriteString(insertTransactionView(m))
	case configView:
		b.WriteString(m.configView.View())
	}

	if status := m.renderStatus(); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.helpKeys()))

	return m.styles.docStyle.Render(b.String())
}

func (m model) renderTitle() string {
	parts := []string{appName, m.sessionState.String()}

	if m.sessionState.authenticated() {
		if label := m.cursor.Display(m.locale); label != "" {
			parts = append(parts, label)
		}
		if email := m.gate.State().UserEmail; email != "" {
			parts = append(parts, email)
		}
	}

	return m.styles.titleStyle.Render(strings.Join(parts, " | "))
}

func (m model) withSpinner(s string) string {
	if !m.isLoading() {
		return s
	}
	return fmt.Sprintf("%s %s", m.loadingSpinner.View(), s)
}

func (m model) renderStatus() string {
	if !m.sessionState.authenticated() {
		return ""
	}
	if m.statusErr != nil {
		return m.styles.errorStyle.Render(m.statusErr.Error())
	}
	if m.statusMsg != "" {
		return m.styles.okStyle.Render(m.statusMsg)
	}
	return ""
}

// helpKeys adds the bindings of the active screen to the global ones.
func (m model) helpKeys() keyMap {
	keys := m.keys
	keys.authenticated = m.sessionState.authenticated()

	switch m.sessionState {
	case summaryState:
		keys.extraShortHelp = []key.Binding{m.summary.Keys.Open}
	case detailState:
		keys.extraShortHelp = []key.Binding{m.detail.Keys.Delete}
	}

	return keys
}
