package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/Rshep3087/ahorrista/config"
	"github.com/Rshep3087/ahorrista/detail"
	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
	"github.com/Rshep3087/ahorrista/session"
	"github.com/Rshep3087/ahorrista/summary"
)

type model struct {
	// sessionState is the screen currently shown
	sessionState sessionState
	// previousSessionState is where esc and closed forms return to
	previousSessionState sessionState

	keys           keyMap
	help           help.Model
	styles         styles
	theme          Theme
	loadingSpinner spinner.Model
	width, height  int

	cfg      config.Config
	locale   language.Tag
	currency string

	gate    *session.Gate
	gateway gateway.Gateway

	// cursor is the month both views show; reset to the current month on
	// every sign in and sign out
	cursor  month.Cursor
	summary summary.Model
	detail  detail.Model

	authForm       *huh.Form
	authErr        error
	authPending    bool
	authGeneration uint64

	categories     []gateway.Category
	expenseForm    *huh.Form
	expensePending bool
	aiRecommender  *AIRecommender

	statusMsg string
	statusErr error

	configView config.Model

	initCmd tea.Cmd
}

// newModel wires the screens around an already restored session gate.
func newModel(cfg config.Config, gate *session.Gate, gw gateway.Gateway, ai *AIRecommender) model {
	theme := newTheme(cfg.Colors)
	locale := cfg.LocaleTag()
	currency := cfg.Currency
	if currency == "" {
		currency = gateway.DefaultCurrency
	}

	m := model{
		keys:           initializeKeyMap(),
		help:           createHelpModel(theme),
		styles:         createStyles(theme),
		theme:          theme,
		loadingSpinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		cfg:            cfg,
		locale:         locale,
		currency:       currency,
		gate:           gate,
		gateway:        gw,
		cursor:         month.Now(),
		aiRecommender:  ai,
		summary: summary.New(
			summary.WithStyles(theme.summaryStyles()),
			summary.WithCurrency(currency),
			summary.WithLocale(locale),
		),
		detail: detail.New(
			detail.WithStyles(theme.detailStyles()),
			detail.WithCurrency(currency),
			detail.WithLocale(locale),
			detail.WithDelegate(newItemDelegate(theme)),
		),
		configView: config.New(),
	}

	m.configView.SetConfig(cfg)

	if state := stateForView(gate.View()); state.authenticated() {
		m.initCmd = enterAuthenticated(&m)
	} else {
		_, m.initCmd = showAuth(&m, state)
	}

	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.loadingSpinner.Tick)
}

// rootAction runs the TUI until the user quits.
func rootAction(ctx context.Context, cfg config.Config, gate *session.Gate, gw gateway.Gateway, ai *AIRecommender) error {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	// the alternate screen belongs to the TUI
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	m := newModel(cfg, gate, gw, ai)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func main() {
	Execute()
}

// anthropicProvider returns nil when no API key is configured, which leaves
// category suggestions disabled.
func anthropicProvider(cfg config.Config) AIProvider {
	if cfg.AnthropicAPIKey == "" {
		return nil
	}
	return NewAnthropicProvider(cfg.AnthropicAPIKey)
}
