package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/ahorrista/gateway"
)

const (
	dateLayout = "2006-01-02"
	// suggestCategoryID marks the "let AI choose" option of the category select
	suggestCategoryID int64 = -1
)

// expenseCreatedMsg reports the outcome of saving a new expense.
type expenseCreatedMsg struct {
	transaction gateway.Transaction
	suggested   *CategoryRecommendation
	err         error
}

func newInsertTransactionForm(categories []gateway.Category, currency string, suggest bool) *huh.Form {
	sorted := slices.Clone(categories)
	slices.SortFunc(sorted, func(a, b gateway.Category) int {
		return strings.Compare(a.Name, b.Name)
	})

	categoryOpts := make([]huh.Option[int64], 0, len(sorted)+1)
	if suggest {
		categoryOpts = append(categoryOpts, huh.NewOption("Suggest one for me", suggestCategoryID))
	}
	for _, c := range sorted {
		categoryOpts = append(categoryOpts, huh.NewOption(c.Name, c.ID))
	}

	today := time.Now().Format(dateLayout)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Description("What the money was spent on").
				Key("description").
				Placeholder("Lunch, bus fare, ...").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Amount").
				Description(fmt.Sprintf("Amount spent in %s", currency)).
				Key("amount").
				Placeholder("25.50").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("amount is required")
					}
					if _, err := gateway.ParseAmount(s, currency); err != nil {
						return errors.New("amount must be a positive number")
					}
					return nil
				}),

			huh.NewInput().
				Title("Date").
				Description("Expense date (YYYY-MM-DD)").
				Key("date").
				Value(&today).
				Placeholder("YYYY-MM-DD").
				Validate(func(s string) error {
					if _, err := time.Parse(dateLayout, s); err != nil {
						return errors.New("date must be in YYYY-MM-DD format")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Category").
				Description("Where the expense is grouped").
				Options(categoryOpts...).
				Key("category"),
		),
	)
}

// expenseFromForm reads a completed form.
func expenseFromForm(form *huh.Form, currency string) (gateway.NewTransaction, error) {
	amount, err := gateway.ParseAmount(form.GetString("amount"), currency)
	if err != nil {
		return gateway.NewTransaction{}, err
	}

	date, err := time.Parse(dateLayout, form.GetString("date"))
	if err != nil {
		return gateway.NewTransaction{}, fmt.Errorf("parse date: %w", err)
	}

	categoryID, ok := form.Get("category").(int64)
	if !ok {
		return gateway.NewTransaction{}, errors.New("category not found in form")
	}

	return gateway.NewTransaction{
		Amount:      amount,
		Description: strings.TrimSpace(form.GetString("description")),
		CategoryID:  categoryID,
		Date:        date,
	}, nil
}

func startNewExpense(m *model) (tea.Model, tea.Cmd) {
	if len(m.categories) == 0 {
		m.statusErr = errors.New("categories are not loaded yet, press r to retry")
		return *m, m.getCategories
	}

	m.statusMsg = ""
	m.statusErr = nil
	m.expensePending = false
	m.expenseForm = newInsertTransactionForm(m.categories, m.currency, m.aiRecommender.IsEnabled())
	m.previousSessionState = m.sessionState
	m.sessionState = newExpenseState
	return *m, tea.Batch(m.expenseForm.Init(), tea.WindowSize())
}

// closeNewExpense returns to the screen the form was opened from.
func closeNewExpense(m *model, status string) (tea.Model, tea.Cmd) {
	m.expenseForm = nil
	m.expensePending = false
	m.statusMsg = status
	m.sessionState = m.previousSessionState
	if m.sessionState != detailState {
		m.sessionState = summaryState
	}
	return *m, tea.WindowSize()
}

func updateInsertTransaction(msg tea.Msg, m *model) (tea.Model, tea.Cmd) {
	if m.expenseForm == nil || m.expensePending {
		return *m, nil
	}

	form, cmd := m.expenseForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.expenseForm = f
	}

	switch m.expenseForm.State {
	case huh.StateCompleted:
		expense, err := expenseFromForm(m.expenseForm, m.currency)
		if err != nil {
			m.statusErr = err
			return closeNewExpense(m, "")
		}

		m.expensePending = true
		if expense.CategoryID == suggestCategoryID {
			return *m, tea.Batch(m.loadingSpinner.Tick, m.aiRecommender.RecommendCategory(expense, m.categories))
		}
		return *m, tea.Batch(m.loadingSpinner.Tick, m.createExpense(expense, nil))

	case huh.StateAborted:
		return closeNewExpense(m, "")
	}

	return *m, cmd
}

func (m model) handleAIRecommendation(msg AIRecommendationMsg) (tea.Model, tea.Cmd) {
	if m.sessionState != newExpenseState || !m.expensePending {
		log.Debug("discarding category suggestion", "description", msg.Expense.Description)
		return m, nil
	}

	if msg.Error != nil {
		m.statusErr = fmt.Errorf("could not suggest a category: %w", msg.Error)
		return closeNewExpense(&m, "")
	}

	expense := msg.Expense
	expense.CategoryID = msg.Recommendation.CategoryID
	return m, m.createExpense(expense, msg.Recommendation)
}

func (m model) createExpense(expense gateway.NewTransaction, suggested *CategoryRecommendation) tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		t, err := gw.CreateTransaction(context.Background(), expense)
		return expenseCreatedMsg{transaction: t, suggested: suggested, err: err}
	}
}

func (m model) handleExpenseCreated(msg expenseCreatedMsg) (tea.Model, tea.Cmd) {
	if m.sessionState != newExpenseState || !m.expensePending {
		return m, nil
	}

	if msg.err != nil {
		log.Error("creating expense", "error", msg.err)
		m.statusErr = msg.err
		return closeNewExpense(&m, "")
	}

	t := msg.transaction
	log.Debug("expense created", "id", t.ID, "category", t.CategoryID)

	status := fmt.Sprintf("Added %s to %s.", displayMoney(t.Amount), m.categoryName(t.CategoryID, t.CategoryName))
	if msg.suggested != nil {
		status = fmt.Sprintf("Added %s to %s (suggested, %.0f%% confident).",
			displayMoney(t.Amount), msg.suggested.CategoryName, msg.suggested.Confidence)
	}

	_, _ = closeNewExpense(&m, status)
	cmd := reloadActive(&m)
	return m, cmd
}

func insertTransactionView(m model) string {
	if m.expensePending {
		return fmt.Sprintf("%s Saving expense...", m.loadingSpinner.View())
	}
	if m.expenseForm == nil {
		return ""
	}
	return m.expenseForm.View()
}
