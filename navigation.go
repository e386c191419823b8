package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/ahorrista/month"
)

// reachabilityResetter is implemented by gateways that remember an
// unreachable backend between requests.
type reachabilityResetter interface {
	ResetReachability()
}

// advanceMonth moves the cursor one month forward and reloads the screen.
func advanceMonth(m *model) (tea.Model, tea.Cmd) {
	m.cursor.Advance()
	log.Debug("advanced month", "month", m.cursor)
	cmd := reloadActive(m)
	return *m, cmd
}

// retreatMonth moves the cursor one month back and reloads the screen.
func retreatMonth(m *model) (tea.Model, tea.Cmd) {
	m.cursor.Retreat()
	log.Debug("retreated month", "month", m.cursor)
	cmd := reloadActive(m)
	return *m, cmd
}

// refresh lets the gateway ping the backend again and reloads the screen.
func refresh(m *model) (tea.Model, tea.Cmd) {
	if r, ok := m.gateway.(reachabilityResetter); ok {
		r.ResetReachability()
	}
	cmd := reloadActive(m)
	return *m, tea.Batch(cmd, m.getCategories)
}

// reloadActive fetches whatever the current screen shows for the cursor's
// month. The detail screen keeps its category.
func reloadActive(m *model) tea.Cmd {
	switch m.sessionState {
	case detailState:
		id, name := m.detail.Category()
		return tea.Batch(m.detail.Load(m.gateway, id, name, m.cursor), m.loadingSpinner.Tick)
	case summaryState:
		return tea.Batch(m.summary.Load(m.gateway, m.cursor), m.loadingSpinner.Tick)
	}
	return nil
}

// openCategory moves to the detail screen for the selected category.
func openCategory(m *model, id int64, name string) (tea.Model, tea.Cmd) {
	log.Debug("opening category", "id", id, "name", name, "month", m.cursor)
	m.previousSessionState = m.sessionState
	m.sessionState = detailState
	load := m.detail.Load(m.gateway, id, name, m.cursor)
	return *m, tea.Batch(load, m.loadingSpinner.Tick, tea.WindowSize())
}

// backToSummary leaves the detail screen. The summary is fetched again since
// deletions may have changed it.
func backToSummary(m *model) (tea.Model, tea.Cmd) {
	m.detail.Reset()
	m.previousSessionState = m.sessionState
	m.sessionState = summaryState
	cmd := reloadActive(m)
	return *m, tea.Batch(cmd, tea.WindowSize())
}

// enterAuthenticated shows the summary for the current month after a sign in
// or a restored session.
func enterAuthenticated(m *model) tea.Cmd {
	m.cursor = month.Now()
	m.detail.Reset()
	m.authForm = nil
	m.authErr = nil
	m.authPending = false
	m.previousSessionState = summaryState
	m.sessionState = summaryState
	load := reloadActive(m)
	return tea.Batch(load, m.getCategories, tea.WindowSize())
}

// logout forgets the session and everything loaded for it.
func logout(m *model) (tea.Model, tea.Cmd) {
	if err := m.gate.SignOut(); err != nil {
		log.Error("signing out", "error", err)
	}

	m.summary.Reset()
	m.detail.Reset()
	m.cursor = month.Now()
	m.categories = nil
	m.expenseForm = nil
	m.expensePending = false
	m.statusMsg = ""
	m.statusErr = nil
	m.help.ShowAll = false

	return showAuth(m, loginState)
}
