package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/ahorrista/detail"
	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/summary"
)

type categoriesMsg struct {
	categories []gateway.Category
	err        error
}

// Message handlers.
func (m model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height

	h, v := m.styles.docStyle.GetFrameSize()
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 5
	}

	width := msg.Width - h
	height := msg.Height - v - takenHeight - helpHeight

	m.summary.SetSize(width, height)
	m.detail.SetSize(width, height)
	m.configView.SetSize(width, height)
	m.help.Width = msg.Width

	if m.authForm != nil {
		m.authForm = m.authForm.WithWidth(width)
	}
	if m.expenseForm != nil {
		m.expenseForm = m.expenseForm.WithHeight(height).WithWidth(width)
	}

	return m, nil
}

func (m model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.isLoading() {
		return m, nil
	}

	var cmd tea.Cmd
	m.loadingSpinner, cmd = m.loadingSpinner.Update(msg)
	return m, cmd
}

// isLoading reports whether anything on screen is waiting for the backend.
func (m model) isLoading() bool {
	switch m.sessionState {
	case loginState, registerState:
		return m.authPending
	case summaryState:
		return m.summary.State() == summary.Loading
	case detailState:
		return m.detail.State() == detail.Loading
	case newExpenseState:
		return m.expensePending
	}
	return false
}

func (m model) handleCategories(msg categoriesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Warn("loading categories", "error", msg.err)
		return m, nil
	}
	if !m.sessionState.authenticated() {
		return m, nil
	}

	m.categories = msg.categories
	log.Debug("loaded categories", "count", len(m.categories))
	return m, nil
}

func (m model) handleSummaryLoaded(msg summary.LoadedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.summary, cmd = m.summary.Update(msg)
	return m, cmd
}

func (m model) handleDetailMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// API call functions.
func (m model) getCategories() tea.Msg {
	cs, err := m.gateway.GetCategories(context.Background())
	if err != nil {
		return categoriesMsg{err: err}
	}

	slices.SortFunc(cs, func(a, b gateway.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categoriesMsg{categories: cs}
}

// categoryName looks id up among the loaded categories.
func (m model) categoryName(id int64, fallback string) string {
	for _, c := range m.categories {
		if c.ID == id {
			return c.Name
		}
	}
	if fallback != "" {
		return fallback
	}
	return fmt.Sprintf("category #%d", id)
}
