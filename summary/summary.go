// Package summary is the month overview: spending grouped by category with
// each category's share of the month's total.
package summary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
)

var titleCaser = cases.Title(language.English)

// State of the current request.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Getter is the part of the gateway the view needs.
type Getter interface {
	GetSummary(ctx context.Context, year, month int) ([]gateway.CategorySummary, error)
}

// LoadedMsg carries a summary response back into the event loop.
type LoadedMsg struct {
	Generation uint64
	Period     month.Cursor
	Entries    []gateway.CategorySummary
	Err        error
}

// SelectedMsg is emitted when the user opens a category.
type SelectedMsg struct {
	CategoryID   int64
	CategoryName string
}

// Share is one category's percentage of the month's total.
type Share struct {
	CategoryID int64
	Percent    float64
}

type Styles struct {
	Title   lipgloss.Style
	Total   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Summary lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Total:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true),
		Summary: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
	}
}

type KeyMap struct {
	Open key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Open} }

func (k KeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Open}} }

// Model is the summary view. Only the response for the latest Load is
// applied; older ones are dropped by generation.
type Model struct {
	Styles Styles
	Keys   KeyMap

	table      table.Model
	state      State
	generation uint64
	period     month.Cursor
	entries    []gateway.CategorySummary
	err        error
	currency   string
	locale     language.Tag
}

type Option func(*Model)

func WithStyles(s Styles) Option {
	return func(m *Model) { m.Styles = s }
}

func WithCurrency(code string) Option {
	return func(m *Model) { m.currency = code }
}

func WithLocale(tag language.Tag) Option {
	return func(m *Model) { m.locale = tag }
}

func New(opts ...Option) Model {
	m := Model{
		Styles: defaultStyles(),
		Keys: KeyMap{
			Open: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "open category"),
			),
		},
		table: table.New(
			table.WithColumns([]table.Column{
				{Title: "Category", Width: 20},
				{Title: "Count", Width: 7},
				{Title: "Total Spent", Width: 15},
				{Title: "% of Total", Width: 10},
			}),
			table.WithFocused(true),
			table.WithHeight(10),
		),
		currency: gateway.DefaultCurrency,
		locale:   language.English,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

func (m Model) State() State { return m.state }

func (m Model) Err() error { return m.err }

func (m Model) Period() month.Cursor { return m.period }

func (m Model) Generation() uint64 { return m.generation }

func (m Model) Entries() []gateway.CategorySummary { return m.entries }

// Load starts fetching the summary for c. Any response still in flight for an
// earlier call is ignored when it arrives.
func (m *Model) Load(g Getter, c month.Cursor) tea.Cmd {
	m.generation++
	m.state = Loading
	m.period = c
	m.entries = nil
	m.err = nil
	m.refreshTable()

	gen := m.generation
	return func() tea.Msg {
		entries, err := g.GetSummary(context.Background(), c.Year(), c.Month())
		return LoadedMsg{Generation: gen, Period: c, Entries: entries, Err: err}
	}
}

// Reset drops everything, including requests still in flight.
func (m *Model) Reset() {
	m.generation++
	m.state = Idle
	m.entries = nil
	m.err = nil
	m.refreshTable()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		return m.handleLoaded(msg), nil

	case tea.KeyMsg:
		if m.state != Loaded || len(m.entries) == 0 {
			return m, nil
		}
		if key.Matches(msg, m.Keys.Open) {
			return m, m.selectCurrent()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleLoaded(msg LoadedMsg) Model {
	if msg.Generation != m.generation {
		log.Debug("discarding stale summary", "period", msg.Period, "generation", msg.Generation, "current", m.generation)
		return m
	}

	if msg.Err != nil {
		log.Error("loading summary", "period", msg.Period, "error", msg.Err)
		m.state = Failed
		m.err = msg.Err
		m.entries = nil
	} else {
		m.state = Loaded
		m.err = nil
		m.entries = msg.Entries
	}

	m.refreshTable()
	return m
}

func (m Model) selectCurrent() tea.Cmd {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return nil
	}

	e := m.entries[i]
	return func() tea.Msg {
		return SelectedMsg{CategoryID: e.CategoryID, CategoryName: e.CategoryName}
	}
}

// GrandTotal is the sum of every category's total.
func (m Model) GrandTotal() *money.Money {
	return TotalOf(m.entries, m.currency)
}

// Shares returns each category's percentage of the total, in entry order. It
// returns nil when the total is zero.
func (m Model) Shares() []Share {
	return SharesOf(m.entries, m.currency)
}

// TotalOf sums entries. Amounts in a different currency are skipped.
func TotalOf(entries []gateway.CategorySummary, currency string) *money.Money {
	if len(entries) > 0 && entries[0].TotalAmount != nil {
		currency = entries[0].TotalAmount.Currency().Code
	}

	total := money.New(0, currency)
	for _, e := range entries {
		if e.TotalAmount == nil {
			continue
		}
		sum, err := total.Add(e.TotalAmount)
		if err != nil {
			log.Warn("skipping summary entry", "category", e.CategoryName, "error", err)
			continue
		}
		total = sum
	}
	return total
}

// SharesOf is Model.Shares for a plain slice of entries.
func SharesOf(entries []gateway.CategorySummary, currency string) []Share {
	total := TotalOf(entries, currency)
	if total.IsZero() {
		return nil
	}

	out := make([]Share, len(entries))
	for i, e := range entries {
		out[i] = Share{CategoryID: e.CategoryID}
		if e.TotalAmount == nil {
			continue
		}
		// entries left out of the total get no share
		if !e.TotalAmount.SameCurrency(total) {
			log.Warn("no share for summary entry", "category", e.CategoryName, "currency", e.TotalAmount.Currency().Code)
			continue
		}
		out[i].Percent = float64(e.TotalAmount.Amount()) / float64(total.Amount()) * 100
	}
	return out
}

// FormatShare renders a percentage to one decimal place.
func FormatShare(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

func (m *Model) refreshTable() {
	shares := m.Shares()

	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		share := "-"
		if shares != nil {
			share = FormatShare(shares[i].Percent)
		}

		amount := "-"
		if e.TotalAmount != nil {
			amount = e.TotalAmount.Display()
		}

		rows[i] = table.Row{
			titleCaser.String(e.CategoryName),
			strconv.Itoa(e.TransactionCount),
			amount,
			share,
		}
	}

	m.table.SetRows(rows)
	// SetRows leaves the cursor at -1 after an empty table
	if c := m.table.Cursor(); c < 0 || c >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	// header, total line and border padding
	m.table.SetHeight(max(height-8, 3))
}

func (m Model) View() string {
	if m.state == Idle {
		return ""
	}

	label := m.period.Display(m.locale)

	switch m.state {
	case Loading:
		return m.Styles.Muted.Render(fmt.Sprintf("Loading expenses for %s...", label))
	case Failed:
		return m.Styles.Error.Render(gateway.UserMessage(m.err))
	}

	if len(m.entries) == 0 {
		return m.Styles.Summary.Render(
			m.Styles.Muted.Render(fmt.Sprintf("No expenses recorded for %s.", label)),
		)
	}

	return m.Styles.Summary.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.Styles.Title.Render("Spending Breakdown"),
			fmt.Sprintf("Total spent: %s", m.Styles.Total.Render(m.GrandTotal().Display())),
			"",
			m.table.View(),
		),
	)
}
