package month

import (
	"errors"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"golang.org/x/text/language"
)

func mustNew(t *testing.T, year, month int) Cursor {
	t.Helper()
	c, err := New(year, month)
	be.NilErr(t, err)
	return c
}

func TestAdvanceRetreat(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantNext  string
		wantPrior string
	}{
		{name: "mid year", year: 2025, month: 7, wantNext: "2025-08", wantPrior: "2025-06"},
		{name: "december rolls forward", year: 2025, month: 12, wantNext: "2026-01", wantPrior: "2025-11"},
		{name: "january rolls back", year: 2025, month: 1, wantNext: "2025-02", wantPrior: "2024-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustNew(t, tt.year, tt.month)

			next := c
			next.Advance()
			be.Equal(t, tt.wantNext, next.String())

			prior := c
			prior.Retreat()
			be.Equal(t, tt.wantPrior, prior.String())

			// round trips
			next.Retreat()
			be.Equal(t, c, next)
			prior.Advance()
			be.Equal(t, c, prior)
		})
	}
}

func TestRoundTripAcrossYears(t *testing.T) {
	start := mustNew(t, 2020, 3)
	c := start
	for range 40 {
		c.Advance()
	}
	be.Equal(t, 2023, c.Year())
	be.Equal(t, 7, c.Month())

	for range 40 {
		c.Retreat()
	}
	be.Equal(t, start, c)
}

func TestNextPrevDoNotMutate(t *testing.T) {
	c := mustNew(t, 2025, 12)
	be.Equal(t, "2026-01", c.Next().String())
	be.Equal(t, "2025-11", c.Prev().String())
	be.Equal(t, "2025-12", c.String())
}

func TestNewRejectsOutOfRange(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		_, err := New(2025, m)
		be.True(t, errors.Is(err, ErrInvalidMonth))
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("2025-07")
	be.NilErr(t, err)
	y, m := c.Current()
	be.Equal(t, 2025, y)
	be.Equal(t, 7, m)

	_, err = Parse("July")
	be.Nonzero(t, err)
}

func TestDisplay(t *testing.T) {
	c := mustNew(t, 2025, 7)

	tests := []struct {
		name string
		tag  language.Tag
		want string
	}{
		{name: "english", tag: language.English, want: "July 2025"},
		{name: "american english", tag: language.AmericanEnglish, want: "July 2025"},
		{name: "spanish", tag: language.Spanish, want: "julio de 2025"},
		{name: "spain", tag: language.MustParse("es-ES"), want: "julio de 2025"},
		{name: "peru", tag: language.MustParse("es-PE"), want: "julio de 2025"},
		{name: "unsupported falls back to english", tag: language.Japanese, want: "July 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.want, c.Display(tt.tag))
		})
	}
}

func TestStartEnd(t *testing.T) {
	c := mustNew(t, 2024, 2)
	be.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), c.Start())
	be.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), c.End())
	be.True(t, c.Contains(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
	be.False(t, c.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestOf(t *testing.T) {
	c := Of(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	be.Equal(t, "2025-12", c.String())
}
