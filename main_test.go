package main

import (
	"context"
	"errors"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/carlmjohnson/be"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rshep3087/ahorrista/config"
	"github.com/Rshep3087/ahorrista/detail"
	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
	"github.com/Rshep3087/ahorrista/session"
	"github.com/Rshep3087/ahorrista/summary"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, signedIn bool) model {
	t.Helper()

	store := session.NewMemoryStore()
	if signedIn {
		be.NilErr(t, store.Save(session.Credentials{Token: "tok", Email: "ana@example.com"}))
	}
	gate, err := session.NewGate(store)
	be.NilErr(t, err)

	cfg := config.Default()
	cfg.Demo = true
	return newModel(cfg, gate, gateway.NewDemo(), NewAIRecommender(nil))
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	be.True(t, ok)
	return nm, cmd
}

// loadSummary answers the summary request currently in flight.
func loadSummary(t *testing.T, m model) model {
	t.Helper()
	c := m.summary.Period()
	entries, err := gateway.NewDemo().GetSummary(context.Background(), c.Year(), c.Month())
	be.NilErr(t, err)
	m, _ = update(t, m, summary.LoadedMsg{Generation: m.summary.Generation(), Period: c, Entries: entries})
	return m
}

func TestNewModelStartup(t *testing.T) {
	t.Run("signed out shows login", func(t *testing.T) {
		m := newTestModel(t, false)
		be.Equal(t, loginState, m.sessionState)
		be.True(t, m.authForm != nil)
		be.Equal(t, month.Now(), m.cursor)
	})

	t.Run("restored session shows current month", func(t *testing.T) {
		m := newTestModel(t, true)
		be.Equal(t, summaryState, m.sessionState)
		be.Equal(t, month.Now(), m.cursor)
		be.Equal(t, summary.Loading, m.summary.State())
		be.True(t, m.initCmd != nil)
	})
}

func TestToggleAuthView(t *testing.T) {
	m := newTestModel(t, false)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	be.Equal(t, registerState, m.sessionState)
	be.Equal(t, session.RegisterView, m.gate.View())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	be.Equal(t, loginState, m.sessionState)
	be.Equal(t, session.LoginView, m.gate.View())
}

func TestToggleIgnoredWhenSignedIn(t *testing.T) {
	m := newTestModel(t, true)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	be.Equal(t, summaryState, m.sessionState)
	be.Equal(t, session.AuthenticatedView, m.gate.View())
}

func TestQuitKeyGoesToAuthForm(t *testing.T) {
	m := newTestModel(t, false)

	_, _, handled := handleKeyPress(runes("q"), &m)
	be.False(t, handled)
	be.Equal(t, loginState, m.sessionState)
}

func TestMonthNavigation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want func(month.Cursor) month.Cursor
	}{
		{"next month", "]", month.Cursor.Next},
		{"previous month", "[", month.Cursor.Prev},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadSummary(t, newTestModel(t, true))
			be.Equal(t, summary.Loaded, m.summary.State())
			start := m.cursor
			gen := m.summary.Generation()

			m, cmd := update(t, m, runes(tt.key))
			be.Equal(t, tt.want(start), m.cursor)
			be.Equal(t, tt.want(start), m.summary.Period())
			be.Equal(t, summary.Loading, m.summary.State())
			be.Equal(t, gen+1, m.summary.Generation())
			be.True(t, cmd != nil)
		})
	}
}

func TestStaleSummaryDiscarded(t *testing.T) {
	m := newTestModel(t, true)
	stale := m.summary.Generation()
	first := m.cursor

	m, _ = update(t, m, runes("]"))

	m, _ = update(t, m, summary.LoadedMsg{
		Generation: stale,
		Period:     first,
		Entries:    []gateway.CategorySummary{{CategoryID: 1, CategoryName: "Food"}},
	})
	be.Equal(t, summary.Loading, m.summary.State())
	be.Equal(t, 0, len(m.summary.Entries()))

	m = loadSummary(t, m)
	be.Equal(t, summary.Loaded, m.summary.State())
	be.Equal(t, first.Next(), m.summary.Period())
}

func TestOpenCategoryAndBack(t *testing.T) {
	m := loadSummary(t, newTestModel(t, true))
	be.True(t, len(m.summary.Entries()) > 0)
	first := m.summary.Entries()[0]

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	be.True(t, cmd != nil)
	msg := cmd()
	selected, ok := msg.(summary.SelectedMsg)
	be.True(t, ok)
	be.Equal(t, first.CategoryID, selected.CategoryID)

	m, _ = update(t, m, selected)
	be.Equal(t, detailState, m.sessionState)
	be.Equal(t, detail.Loading, m.detail.State())
	id, name := m.detail.Category()
	be.Equal(t, first.CategoryID, id)
	be.Equal(t, first.CategoryName, name)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	be.Equal(t, summaryState, m.sessionState)
	be.Equal(t, detail.Idle, m.detail.State())
	be.Equal(t, summary.Loading, m.summary.State())
}

func TestSelectedIgnoredOutsideSummary(t *testing.T) {
	m := newTestModel(t, false)

	m, _ = update(t, m, summary.SelectedMsg{CategoryID: 1, CategoryName: "Food"})
	be.Equal(t, loginState, m.sessionState)
}

func TestMonthChangeKeepsDetailCategory(t *testing.T) {
	m := loadSummary(t, newTestModel(t, true))
	m, _ = update(t, m, summary.SelectedMsg{CategoryID: 2, CategoryName: "Transport"})
	start := m.cursor

	m, _ = update(t, m, runes("["))
	be.Equal(t, detailState, m.sessionState)
	be.Equal(t, start.Prev(), m.cursor)
	id, _ := m.detail.Category()
	be.Equal(t, int64(2), id)
}

func TestEscapeDeclinesPendingDelete(t *testing.T) {
	m := loadSummary(t, newTestModel(t, true))
	m, _ = update(t, m, summary.SelectedMsg{CategoryID: 2, CategoryName: "Transport"})
	be.Equal(t, detailState, m.sessionState)

	m, _ = update(t, m, detail.LoadedMsg{
		Generation: m.detail.Generation(),
		CategoryID: 2,
		Period:     m.cursor,
		Entries: []gateway.Transaction{
			{ID: 7, Amount: money.New(2200, "PEN"), Description: "Fuel", CategoryID: 2, CategoryName: "Transport"},
		},
	})
	be.Equal(t, detail.Loaded, m.detail.State())

	m, _ = update(t, m, runes("d"))
	be.True(t, m.detail.Confirming())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	be.True(t, cmd == nil)
	be.False(t, m.detail.Confirming())
	be.Equal(t, detailState, m.sessionState)
	be.Equal(t, 1, m.detail.Count())
	be.Equal(t, int64(7), m.detail.Entries()[0].ID)
}

type unwritableStore struct {
	*session.MemoryStore
}

func (unwritableStore) Save(session.Credentials) error {
	return errors.New("read-only keyring")
}

func TestAuthResultSaveFailureStaysSignedOut(t *testing.T) {
	gate, err := session.NewGate(unwritableStore{session.NewMemoryStore()})
	be.NilErr(t, err)
	cfg := config.Default()
	cfg.Demo = true
	m := newModel(cfg, gate, gateway.NewDemo(), NewAIRecommender(nil))
	m.authPending = true

	next, _ := m.handleAuthResult(authResultMsg{
		generation: m.authGeneration,
		kind:       gateway.Login,
		result:     gateway.AuthResult{Token: "tok", Email: "ana@example.com"},
	})
	m = next.(model)

	be.Equal(t, loginState, m.sessionState)
	be.Nonzero(t, m.authErr)
	be.False(t, m.gate.State().Authenticated)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	be.Equal(t, registerState, m.sessionState)
}

func TestLogoutResetsEverything(t *testing.T) {
	m := loadSummary(t, newTestModel(t, true))
	m.categories = []gateway.Category{{ID: 1, Name: "Food"}}
	m.statusMsg = "Added"

	m, _ = update(t, m, runes("L"))
	be.Equal(t, loginState, m.sessionState)
	be.Equal(t, month.Now(), m.cursor)
	be.Equal(t, summary.Idle, m.summary.State())
	be.Equal(t, 0, len(m.categories))
	be.Equal(t, "", m.statusMsg)
	be.False(t, m.gate.State().Authenticated)
	be.True(t, m.authForm != nil)
}

func TestHandleAuthResult(t *testing.T) {
	t.Run("success signs in", func(t *testing.T) {
		m := newTestModel(t, false)
		m.authPending = true

		next, cmd := m.handleAuthResult(authResultMsg{
			generation: m.authGeneration,
			kind:       gateway.Login,
			result:     gateway.AuthResult{Token: "tok", Email: "ana@example.com"},
		})
		m = next.(model)

		be.True(t, cmd != nil)
		be.Equal(t, summaryState, m.sessionState)
		be.Equal(t, month.Now(), m.cursor)
		be.Equal(t, "ana@example.com", m.gate.State().UserEmail)
		be.Equal(t, "tok", m.gate.Token())
	})

	t.Run("failure keeps the form", func(t *testing.T) {
		m := newTestModel(t, false)
		m.authPending = true

		next, _ := m.handleAuthResult(authResultMsg{
			generation: m.authGeneration,
			kind:       gateway.Login,
			err:        gateway.ErrInvalidCredentials,
		})
		m = next.(model)

		be.Equal(t, loginState, m.sessionState)
		be.False(t, m.authPending)
		be.True(t, errors.Is(m.authErr, gateway.ErrInvalidCredentials))
		be.False(t, m.gate.State().Authenticated)
	})

	t.Run("stale result ignored", func(t *testing.T) {
		m := newTestModel(t, false)
		m.authPending = true

		next, cmd := m.handleAuthResult(authResultMsg{
			generation: m.authGeneration - 1,
			result:     gateway.AuthResult{Token: "tok", Email: "ana@example.com"},
		})
		m = next.(model)

		be.True(t, cmd == nil)
		be.Equal(t, loginState, m.sessionState)
		be.False(t, m.gate.State().Authenticated)
	})
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		kind     gateway.AuthKind
		wantErr  bool
	}{
		{"valid login", "ana@example.com", "x", gateway.Login, false},
		{"missing email", "", "secret", gateway.Login, true},
		{"bad email", "not-an-email", "secret", gateway.Login, true},
		{"missing password", "ana@example.com", "", gateway.Login, true},
		{"short register password", "ana@example.com", "abc", gateway.Register, true},
		{"register password", "ana@example.com", "abcd", gateway.Register, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.Join(validateEmail(tt.email), validatePassword(tt.kind)(tt.password))
			be.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNewExpenseNeedsCategories(t *testing.T) {
	m := newTestModel(t, true)

	m, cmd := update(t, m, runes("n"))
	be.Equal(t, summaryState, m.sessionState)
	be.True(t, m.statusErr != nil)
	be.True(t, cmd != nil)

	m.categories = []gateway.Category{{ID: 1, Name: "Food"}}
	m, _ = update(t, m, runes("n"))
	be.Equal(t, newExpenseState, m.sessionState)
	be.True(t, m.expenseForm != nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	be.Equal(t, summaryState, m.sessionState)
	be.True(t, m.expenseForm == nil)
}

func TestConfigViewRoundTrip(t *testing.T) {
	m := newTestModel(t, true)

	m, _ = update(t, m, runes("g"))
	be.Equal(t, configView, m.sessionState)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	be.Equal(t, summaryState, m.sessionState)
}
