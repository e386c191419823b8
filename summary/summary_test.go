package summary

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/carlmjohnson/be"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
)

type stubGetter struct {
	entries []gateway.CategorySummary
	err     error
	calls   []month.Cursor
}

func (s *stubGetter) GetSummary(_ context.Context, year, m int) ([]gateway.CategorySummary, error) {
	c, _ := month.New(year, m)
	s.calls = append(s.calls, c)
	return s.entries, s.err
}

func entry(id int64, name string, minor int64, count int) gateway.CategorySummary {
	return gateway.CategorySummary{
		CategoryID:       id,
		CategoryName:     name,
		TotalAmount:      money.New(minor, "PEN"),
		TransactionCount: count,
	}
}

func cursor(t *testing.T, y, m int) month.Cursor {
	t.Helper()
	c, err := month.New(y, m)
	be.NilErr(t, err)
	return c
}

func TestLoadAppliesResponse(t *testing.T) {
	g := &stubGetter{entries: []gateway.CategorySummary{
		entry(1, "Food", 45050, 15),
		entry(2, "Transport", 12000, 8),
	}}
	m := New()

	cmd := m.Load(g, cursor(t, 2025, 7))
	be.Equal(t, Loading, m.State())

	m, _ = m.Update(cmd())
	be.Equal(t, Loaded, m.State())
	be.Equal(t, 2, len(m.Entries()))
	be.Equal(t, "Food", m.Entries()[0].CategoryName)
	be.Equal(t, int64(57050), m.GrandTotal().Amount())
	be.Equal(t, cursor(t, 2025, 7), g.calls[0])

	shares := m.Shares()
	be.Equal(t, "79.0%", FormatShare(shares[0].Percent))
	be.Equal(t, "21.0%", FormatShare(shares[1].Percent))
}

func TestSharesSumToHundred(t *testing.T) {
	tests := []struct {
		name    string
		entries []gateway.CategorySummary
	}{
		{name: "two", entries: []gateway.CategorySummary{entry(1, "a", 45050, 1), entry(2, "b", 12000, 1)}},
		{name: "thirds", entries: []gateway.CategorySummary{entry(1, "a", 100, 1), entry(2, "b", 100, 1), entry(3, "c", 100, 1)}},
		{name: "single", entries: []gateway.CategorySummary{entry(1, "a", 1, 1)}},
		{name: "sample month", entries: []gateway.CategorySummary{
			entry(1, "a", 45050, 15), entry(2, "b", 12000, 8), entry(3, "c", 8575, 5),
			entry(4, "d", 20000, 4), entry(5, "e", 15025, 3),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SharesOf(tt.entries, "PEN")
			be.Equal(t, len(tt.entries), len(got))

			var sum float64
			for _, s := range got {
				sum += s.Percent
			}
			be.True(t, math.Abs(sum-100) < 0.1*float64(len(got)))
		})
	}
}

func TestSharesSkipOtherCurrency(t *testing.T) {
	other := entry(3, "c", 50000, 1)
	other.TotalAmount = money.New(50000, "USD")

	got := SharesOf([]gateway.CategorySummary{entry(1, "a", 7500, 1), entry(2, "b", 2500, 1), other}, "PEN")
	be.Equal(t, 3, len(got))
	be.Equal(t, 75.0, got[0].Percent)
	be.Equal(t, 25.0, got[1].Percent)
	be.Equal(t, 0.0, got[2].Percent)
}

func TestSharesZeroTotal(t *testing.T) {
	be.Zero(t, len(SharesOf(nil, "PEN")))
	be.Zero(t, len(SharesOf([]gateway.CategorySummary{entry(1, "a", 0, 0)}, "PEN")))
	be.Equal(t, int64(0), TotalOf(nil, "PEN").Amount())
}

func TestEmptyIsLoadedNotFailed(t *testing.T) {
	m := New()
	cmd := m.Load(&stubGetter{}, cursor(t, 2025, 7))
	m, _ = m.Update(cmd())

	be.Equal(t, Loaded, m.State())
	be.Equal(t, 0, len(m.Entries()))
	be.True(t, m.Shares() == nil)
	be.True(t, strings.Contains(m.View(), "No expenses recorded for July 2025."))
}

func TestFailureClearsEntries(t *testing.T) {
	g := &stubGetter{entries: []gateway.CategorySummary{entry(1, "Food", 100, 1)}}
	m := New()
	m, _ = m.Update(m.Load(g, cursor(t, 2025, 7))())
	be.Equal(t, 1, len(m.Entries()))

	g.entries, g.err = nil, gateway.ErrUnreachable
	m, _ = m.Update(m.Load(g, cursor(t, 2025, 8))())

	be.Equal(t, Failed, m.State())
	be.True(t, errors.Is(m.Err(), gateway.ErrUnreachable))
	be.Equal(t, 0, len(m.Entries()))
	be.True(t, strings.Contains(m.View(), "Cannot reach the server"))
}

func TestStaleResponseIgnored(t *testing.T) {
	july := &stubGetter{entries: []gateway.CategorySummary{entry(1, "July", 100, 1)}}
	august := &stubGetter{entries: []gateway.CategorySummary{entry(2, "August", 200, 2)}}
	m := New()

	first := m.Load(july, cursor(t, 2025, 7))
	second := m.Load(august, cursor(t, 2025, 8))

	// newer response arrives first, older one afterwards
	m, _ = m.Update(second())
	m, _ = m.Update(first())

	be.Equal(t, Loaded, m.State())
	be.Equal(t, "August", m.Entries()[0].CategoryName)
	be.Equal(t, cursor(t, 2025, 8), m.Period())
}

func TestStaleResponseIgnoredWhileLoading(t *testing.T) {
	m := New()
	first := m.Load(&stubGetter{entries: []gateway.CategorySummary{entry(1, "Old", 1, 1)}}, cursor(t, 2025, 7))
	_ = m.Load(&stubGetter{}, cursor(t, 2025, 8))

	m, _ = m.Update(first())
	be.Equal(t, Loading, m.State())
	be.Equal(t, 0, len(m.Entries()))
}

func TestResetDiscardsInFlight(t *testing.T) {
	m := New()
	cmd := m.Load(&stubGetter{entries: []gateway.CategorySummary{entry(1, "Food", 1, 1)}}, cursor(t, 2025, 7))
	m.Reset()

	m, _ = m.Update(cmd())
	be.Equal(t, Idle, m.State())
	be.Equal(t, 0, len(m.Entries()))
	be.Equal(t, "", m.View())
}

func TestEnterEmitsSelection(t *testing.T) {
	g := &stubGetter{entries: []gateway.CategorySummary{
		entry(1, "Food", 45050, 15),
		entry(2, "Transport", 12000, 8),
	}}
	m := New()
	m, _ = m.Update(m.Load(g, cursor(t, 2025, 7))())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	before := m.Generation()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	be.True(t, cmd != nil)

	sel, ok := cmd().(SelectedMsg)
	be.True(t, ok)
	be.Equal(t, SelectedMsg{CategoryID: 2, CategoryName: "Transport"}, sel)

	// selection leaves the view untouched
	be.Equal(t, Loaded, m.State())
	be.Equal(t, before, m.Generation())
	be.Equal(t, 2, len(m.Entries()))
}

func TestEnterAfterLoadSelectsFirstRow(t *testing.T) {
	g := &stubGetter{entries: []gateway.CategorySummary{
		entry(1, "Food", 45050, 15),
		entry(2, "Transport", 12000, 8),
	}}
	m := New()
	m, _ = m.Update(m.Load(g, cursor(t, 2025, 7))())

	// a second load passes through an empty table again
	m, _ = m.Update(m.Load(g, cursor(t, 2025, 8))())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	be.True(t, cmd != nil)
	be.Equal(t, SelectedMsg{CategoryID: 1, CategoryName: "Food"}, cmd().(SelectedMsg))
}

func TestEnterIgnoredWhenEmpty(t *testing.T) {
	m := New()
	m, _ = m.Update(m.Load(&stubGetter{}, cursor(t, 2025, 7))())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	be.True(t, cmd == nil)
}

func TestFormatShare(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{78.96669588080631, "79.0%"},
		{21.033304119193692, "21.0%"},
		{33.333333, "33.3%"},
		{100, "100.0%"},
		{0.04, "0.0%"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.want, FormatShare(tt.in))
	}
}
