package main

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rshep3087/ahorrista/detail"
	"github.com/Rshep3087/ahorrista/summary"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// global keys first, the active screen gets whatever is left
	if msg, ok := msg.(tea.KeyMsg); ok {
		if model, cmd, handled := handleKeyPress(msg, &m); handled {
			return model, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)

	case authResultMsg:
		return m.handleAuthResult(msg)

	case categoriesMsg:
		return m.handleCategories(msg)

	// view responses are routed by type so each view can drop stale ones
	case summary.LoadedMsg:
		return m.handleSummaryLoaded(msg)

	case detail.LoadedMsg, detail.DeletedMsg:
		return m.handleDetailMsg(msg)

	case summary.SelectedMsg:
		if m.sessionState != summaryState {
			return m, nil
		}
		return openCategory(&m, msg.CategoryID, msg.CategoryName)

	case AIRecommendationMsg:
		return m.handleAIRecommendation(msg)

	case expenseCreatedMsg:
		return m.handleExpenseCreated(msg)
	}

	var cmd tea.Cmd
	switch m.sessionState {
	case loginState, registerState:
		return updateAuth(msg, &m)

	case summaryState:
		m.summary, cmd = m.summary.Update(msg)
		return m, cmd

	case detailState:
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case newExpenseState:
		return updateInsertTransaction(msg, &m)

	case configView:
		m.configView, cmd = m.configView.Update(msg)
		return m, cmd
	}

	return m, nil
}
