// Package detail lists one category's transactions for a month and lets the
// user delete them.
package detail

import (
	"context"
	"fmt"
	"slices"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
)

const confirmKey = "confirm"

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

// Source is the part of the gateway the view needs.
type Source interface {
	GetDetail(ctx context.Context, year, month int, categoryID int64) ([]gateway.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// LoadedMsg carries a detail response back into the event loop.
type LoadedMsg struct {
	Generation uint64
	CategoryID int64
	Period     month.Cursor
	Entries    []gateway.Transaction
	Err        error
}

// DeletedMsg reports the outcome of a delete. The entry is already gone from
// the list by the time it arrives.
type DeletedMsg struct {
	ID  int64
	Err error
}

type Styles struct {
	Header lipgloss.Style
	Total  lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true),
		Total:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true),
	}
}

type KeyMap struct {
	Delete key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Delete} }

func (k KeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Delete}} }

// Model is the detail view for one (category, month) pair.
type Model struct {
	Styles Styles
	Keys   KeyMap

	list       list.Model
	state      State
	generation uint64
	source     Source

	categoryID   int64
	categoryName string
	period       month.Cursor
	entries      []gateway.Transaction
	err          error

	confirm *huh.Form
	pending *gateway.Transaction

	currency string
	locale   language.Tag
}

type Option func(*Model)

func WithStyles(s Styles) Option {
	return func(m *Model) { m.Styles = s }
}

func WithDelegate(d list.ItemDelegate) Option {
	return func(m *Model) { m.list.SetDelegate(d) }
}

func WithCurrency(code string) Option {
	return func(m *Model) { m.currency = code }
}

func WithLocale(tag language.Tag) Option {
	return func(m *Model) { m.locale = tag }
}

func New(opts ...Option) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	m := Model{
		Styles: defaultStyles(),
		Keys: KeyMap{
			Delete: key.NewBinding(
				key.WithKeys("d"),
				key.WithHelp("d", "delete transaction"),
			),
		},
		list:     l,
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

func (m Model) Generation() uint64 { return m.generation }

func (m Model) Entries() []gateway.Transaction { return m.entries }

func (m Model) Count() int { return len(m.entries) }

// Category is the category currently shown.
func (m Model) Category() (int64, string) { return m.categoryID, m.categoryName }

// Confirming reports whether the delete confirmation has focus.
func (m Model) Confirming() bool { return m.confirm != nil }

// Filtering reports whether the list filter is taking keystrokes.
func (m Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

// Total is the sum of the listed transactions.
func (m Model) Total() *money.Money {
	total := money.New(0, m.currency)
	for _, t := range m.entries {
		if t.Amount == nil {
			continue
		}
		sum, err := total.Add(t.Amount)
		if err != nil {
			log.Warn("skipping transaction in total", "id", t.ID, "error", err)
			continue
		}
		total = sum
	}
	return total
}

// Load fetches the transactions for the category in month c. Responses for
// any earlier key are dropped on arrival.
func (m *Model) Load(src Source, categoryID int64, categoryName string, c month.Cursor) tea.Cmd {
	m.generation++
	m.source = src
	m.state = Loading
	m.categoryID = categoryID
	m.categoryName = categoryName
	m.period = c
	m.entries = nil
	m.err = nil
	m.confirm = nil
	m.pending = nil
	m.list.ResetFilter()
	setItemsCmd := m.refreshList()

	gen := m.generation
	return tea.Batch(setItemsCmd, func() tea.Msg {
		entries, err := src.GetDetail(context.Background(), c.Year(), c.Month(), categoryID)
		return LoadedMsg{Generation: gen, CategoryID: categoryID, Period: c, Entries: entries, Err: err}
	})
}

// Reset forgets the selected category and anything in flight.
func (m *Model) Reset() {
	m.generation++
	m.state = Idle
	m.categoryID = 0
	m.categoryName = ""
	m.entries = nil
	m.err = nil
	m.confirm = nil
	m.pending = nil
	m.list.ResetFilter()
	m.refreshList()
}

// RequestDelete asks the user to confirm deleting the highlighted entry.
func (m *Model) RequestDelete() tea.Cmd {
	if m.state != Loaded || m.confirm != nil {
		return nil
	}

	item, ok := m.list.SelectedItem().(transactionItem)
	if !ok {
		return nil
	}

	t := item.t
	m.pending = &t
	m.confirm = newConfirmForm(t)
	return m.confirm.Init()
}

// ConfirmDelete resolves a pending confirmation. Declining changes nothing.
// Confirming removes the entry at once and asks the backend to delete it; a
// failure from the backend is logged and otherwise ignored.
func (m *Model) ConfirmDelete(confirmed bool) tea.Cmd {
	if m.pending == nil {
		return nil
	}

	t := *m.pending
	m.pending = nil
	m.confirm = nil

	if !confirmed {
		return nil
	}

	m.entries = slices.DeleteFunc(slices.Clone(m.entries), func(e gateway.Transaction) bool {
		return e.ID == t.ID
	})
	setItemsCmd := m.refreshList()

	src := m.source
	deleteCmd := func() tea.Msg {
		if src == nil {
			return DeletedMsg{ID: t.ID}
		}
		return DeletedMsg{ID: t.ID, Err: src.DeleteTransaction(context.Background(), t.ID)}
	}

	return tea.Batch(setItemsCmd, deleteCmd)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case LoadedMsg:
		return m.handleLoaded(msg)

	case DeletedMsg:
		if msg.Err != nil {
			log.Warn("delete failed after the entry was removed locally", "id", msg.ID, "error", msg.Err)
			return m, nil
		}
		log.Debug("transaction deleted", "id", msg.ID)
		return m, nil

	case tea.KeyMsg:
		if m.state != Loaded {
			return m, nil
		}
		if !m.Filtering() && key.Matches(msg, m.Keys.Delete) {
			return m, m.RequestDelete()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	// responses keep arriving while the dialog is open
	switch msg := msg.(type) {
	case LoadedMsg:
		return m.handleLoaded(msg)
	case DeletedMsg:
		if msg.Err != nil {
			log.Warn("delete failed after the entry was removed locally", "id", msg.ID, "error", msg.Err)
		}
		return m, nil
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		return m, m.ConfirmDelete(m.confirm.GetBool(confirmKey))
	case huh.StateAborted:
		return m, m.ConfirmDelete(false)
	}

	return m, cmd
}

func (m Model) handleLoaded(msg LoadedMsg) (Model, tea.Cmd) {
	if msg.Generation != m.generation {
		log.Debug("discarding stale detail",
			"category", msg.CategoryID, "period", msg.Period,
			"generation", msg.Generation, "current", m.generation)
		return m, nil
	}

	if msg.Err != nil {
		log.Error("loading detail", "category", msg.CategoryID, "period", msg.Period, "error", msg.Err)
		m.state = Failed
		m.err = msg.Err
		m.entries = nil
	} else {
		m.state = Loaded
		m.err = nil
		m.entries = msg.Entries
	}

	return m, m.refreshList()
}

func (m *Model) refreshList() tea.Cmd {
	items := make([]list.Item, len(m.entries))
	for i, t := range m.entries {
		items[i] = transactionItem{t: t}
	}
	return m.list.SetItems(items)
}

func (m *Model) SetSize(width, height int) {
	// header and total lines
	m.list.SetSize(width, max(height-3, 1))
}

func newConfirmForm(t gateway.Transaction) *huh.Form {
	amount := "-"
	if t.Amount != nil {
		amount = t.Amount.Display()
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Key(confirmKey).
			Title("Delete transaction?").
			Description(fmt.Sprintf("%s (%s) will be removed. This cannot be undone.", displayDescription(t), amount)).
			Affirmative("Delete").
			Negative("Keep"),
	))
}

func (m Model) View() string {
	if m.state == Idle {
		return ""
	}

	header := m.Styles.Header.Render(fmt.Sprintf("%s · %s", m.categoryName, m.period.Display(m.locale)))

	switch m.state {
	case Loading:
		return lipgloss.JoinVertical(lipgloss.Left, header, m.Styles.Muted.Render("Loading transactions..."))
	case Failed:
		return lipgloss.JoinVertical(lipgloss.Left, header, m.Styles.Error.Render(gateway.UserMessage(m.err)))
	}

	total := fmt.Sprintf("Total: %s (%d transactions)", m.Styles.Total.Render(m.Total().Display()), m.Count())

	body := m.list.View()
	if len(m.entries) == 0 {
		body = m.Styles.Muted.Render("No transactions in this category for the month.")
	}
	if m.confirm != nil {
		body = m.confirm.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, total, "", body)
}
