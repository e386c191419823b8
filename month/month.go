// Package month tracks the calendar month a user is looking at.
package month

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// ErrInvalidMonth is returned when a month number falls outside 1..12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Cursor is a (year, month) pair. The zero value is not meaningful; build one
// with Of, New or Parse.
type Cursor struct {
	year  int
	month time.Month
}

// Of returns the cursor for the month containing t.
func Of(t time.Time) Cursor {
	return Cursor{year: t.Year(), month: t.Month()}
}

// Now returns the cursor for the current calendar month.
func Now() Cursor {
	return Of(time.Now())
}

// New builds a cursor from explicit numbers.
func New(year, month int) (Cursor, error) {
	if month < 1 || month > 12 {
		return Cursor{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}

	return Cursor{year: year, month: time.Month(month)}, nil
}

// Parse reads a cursor in "2006-01" form.
func Parse(s string) (Cursor, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Cursor{}, fmt.Errorf("parse month %q: %w", s, err)
	}

	return Of(t), nil
}

func (c Cursor) Year() int { return c.year }

func (c Cursor) Month() int { return int(c.month) }

// Current returns the pair the cursor points at.
func (c Cursor) Current() (int, int) {
	return c.year, int(c.month)
}

// Advance moves to the following month, rolling December into January.
func (c *Cursor) Advance() {
	if c.month == time.December {
		c.month = time.January
		c.year++
		return
	}
	c.month++
}

// Retreat moves to the preceding month, rolling January into December.
func (c *Cursor) Retreat() {
	if c.month == time.January {
		c.month = time.December
		c.year--
		return
	}
	c.month--
}

// Next returns the month after c without modifying it.
func (c Cursor) Next() Cursor {
	c.Advance()
	return c
}

// Prev returns the month before c without modifying it.
func (c Cursor) Prev() Cursor {
	c.Retreat()
	return c
}

// Start is the first instant of the month in UTC.
func (c Cursor) Start() time.Time {
	return time.Date(c.year, c.month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last second of the month in UTC.
func (c Cursor) End() time.Time {
	return time.Date(c.year, c.month+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
}

// Contains reports whether t falls inside the month.
func (c Cursor) Contains(t time.Time) bool {
	return t.Year() == c.year && t.Month() == c.month
}

func (c Cursor) String() string {
	return fmt.Sprintf("%04d-%02d", c.year, int(c.month))
}

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)

	spanishMonths = [...]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}
)

// Display renders the long-form label for the month in the closest supported
// language, e.g. "July 2025" or "julio de 2025".
func (c Cursor) Display(tag language.Tag) string {
	if c.month < time.January || c.month > time.December {
		return ""
	}

	_, idx, _ := matcher.Match(tag)
	if supported[idx] == language.Spanish {
		return fmt.Sprintf("%s de %d", spanishMonths[c.month-1], c.year)
	}

	return fmt.Sprintf("%s %d", c.month.String(), c.year)
}
