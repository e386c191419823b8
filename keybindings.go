package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
)

type keyMap struct {
	toggleAuth     key.Binding
	nextMonth      key.Binding
	previousMonth  key.Binding
	newExpense     key.Binding
	refresh        key.Binding
	config         key.Binding
	logout         key.Binding
	escape         key.Binding
	fullHelp       key.Binding
	quit           key.Binding
	forceQuit      key.Binding
	authenticated  bool
	extraShortHelp []key.Binding
}

func (km keyMap) ShortHelp() []key.Binding {
	if !km.authenticated {
		return []key.Binding{km.toggleAuth, km.forceQuit}
	}

	bindings := []key.Binding{km.previousMonth, km.nextMonth}
	bindings = append(bindings, km.extraShortHelp...)
	return append(bindings, km.newExpense, km.escape, km.quit, km.fullHelp)
}

func (km keyMap) FullHelp() [][]key.Binding {
	if !km.authenticated {
		return [][]key.Binding{{km.toggleAuth, km.forceQuit}}
	}

	return [][]key.Binding{
		append([]key.Binding{km.previousMonth, km.nextMonth}, km.extraShortHelp...),
		{
			km.newExpense,
			km.refresh,
			km.config,
			km.logout,
		},
		{
			km.escape,
			km.quit,
			km.fullHelp,
		},
	}
}

func initializeKeyMap() keyMap {
	return keyMap{
		toggleAuth: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch login/register"),
		),
		nextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		previousMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous month"),
		),
		newExpense: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new expense"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		config: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "configuration"),
		),
		logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		fullHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// handleKeyPress runs the global key handling. The returned bool reports
// whether the key was consumed; unconsumed keys go on to the active screen.
func handleKeyPress(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd, bool) {
	log.Debug("key pressed", "key", msg.String())

	// Handle special keys first
	if model, cmd, ok := handleSpecialKeys(msg, m); ok {
		return model, cmd, true
	}

	// Check if input is blocked by active forms
	if isInputBlocked(m) {
		return *m, nil, false
	}

	if key.Matches(msg, m.keys.quit) {
		return *m, tea.Quit, true
	}

	if model, cmd, ok := handleNavigationKeys(msg, m); ok {
		return model, cmd, true
	}

	return handleSessionStateKeys(msg, m)
}

func handleSpecialKeys(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return *m, tea.Quit, true

	case key.Matches(msg, m.keys.toggleAuth):
		if !m.sessionState.authenticated() {
			model, cmd := toggleAuthView(m)
			return model, cmd, true
		}

	case key.Matches(msg, m.keys.escape):
		return handleEscape(msg, m)
	}

	return *m, nil, false
}

// isInputBlocked reports whether a form or filter should receive every key.
func isInputBlocked(m *model) bool {
	if !m.sessionState.authenticated() {
		return true
	}

	if m.sessionState == newExpenseState {
		return m.expensePending || m.expenseForm != nil && m.expenseForm.State == huh.StateNormal
	}

	if m.sessionState == detailState && (m.detail.Confirming() || m.detail.Filtering()) {
		return true
	}

	return false
}

func handleNavigationKeys(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd, bool) {
	if m.sessionState != summaryState && m.sessionState != detailState {
		return *m, nil, false
	}

	var (
		model tea.Model
		cmd   tea.Cmd
	)
	switch {
	case key.Matches(msg, m.keys.nextMonth):
		model, cmd = advanceMonth(m)
	case key.Matches(msg, m.keys.previousMonth):
		model, cmd = retreatMonth(m)
	case key.Matches(msg, m.keys.refresh):
		model, cmd = refresh(m)
	default:
		return *m, nil, false
	}

	return model, cmd, true
}

func handleSessionStateKeys(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.newExpense):
		if m.sessionState == summaryState || m.sessionState == detailState {
			model, cmd := startNewExpense(m)
			return model, cmd, true
		}

	case key.Matches(msg, m.keys.config):
		if m.sessionState != configView {
			m.previousSessionState = m.sessionState
			m.configView.SetFocus(true)
			m.sessionState = configView
			return *m, tea.WindowSize(), true
		}

	case key.Matches(msg, m.keys.logout):
		model, cmd := logout(m)
		return model, cmd, true

	case key.Matches(msg, m.keys.fullHelp):
		m.help.ShowAll = !m.help.ShowAll
		return *m, tea.WindowSize(), true
	}

	return *m, nil, false
}

// handleEscape steps back one screen.
func handleEscape(msg tea.KeyMsg, m *model) (tea.Model, tea.Cmd, bool) {
	switch m.sessionState {
	case newExpenseState:
		log.Debug("handling escape in new expense state")
		if m.expenseForm != nil {
			m.expenseForm.State = huh.StateAborted
		}
		model, cmd := closeNewExpense(m, "")
		return model, cmd, true

	case detailState:
		if m.detail.Confirming() {
			log.Debug("escape declines the pending delete")
			cmd := m.detail.ConfirmDelete(false)
			return *m, cmd, true
		}
		if m.detail.Filtering() {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return *m, cmd, true
		}
		model, cmd := backToSummary(m)
		return model, cmd, true

	case configView:
		m.configView.SetFocus(false)
		m.sessionState = m.previousSessionState
		return *m, tea.WindowSize(), true
	}

	return *m, nil, false
}
