package gateway

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Rhymond/go-money"
)

var demoCategories = []Category{
	{ID: 1, Name: "Food"},
	{ID: 2, Name: "Transport"},
	{ID: 3, Name: "Entertainment"},
	{ID: 4, Name: "Utilities"},
	{ID: 5, Name: "Health"},
	{ID: 6, Name: "Clothing"},
	{ID: 7, Name: "Education"},
	{ID: 8, Name: "Other"},
}

type demoSeed struct {
	categoryID  int64
	minor       int64
	description string
	day         int
}

// Seeded for every month the first time it is read.
var demoSeeds = []demoSeed{
	{1, 2550, "Groceries", 15},
	{1, 4500, "Dinner out", 14},
	{1, 1275, "Bakery", 9},
	{1, 6020, "Supermarket", 3},
	{2, 1500, "Taxi", 12},
	{2, 850, "Bus card top-up", 5},
	{2, 2200, "Fuel", 20},
	{3, 3500, "Cinema", 18},
	{3, 1890, "Streaming", 1},
	{4, 12000, "Electricity", 10},
	{4, 8000, "Internet", 10},
	{5, 15025, "Pharmacy", 22},
}

// Demo is an in-memory Gateway. It accepts any non-empty credentials and
// seeds sample transactions per month, so the app can be explored without a
// backend. It is safe for concurrent use.
type Demo struct {
	currency string
	seed     bool
	now      func() time.Time

	mu           sync.Mutex
	categories   []Category
	transactions []Transaction
	seeded       map[string]bool
	nextID       int64
	goals        []Goal
	nextGoalID   int64
}

var _ Gateway = (*Demo)(nil)

type DemoOption func(*Demo)

func DemoCurrency(code string) DemoOption {
	return func(d *Demo) { d.currency = code }
}

// DemoUnseeded starts with no transactions.
func DemoUnseeded() DemoOption {
	return func(d *Demo) { d.seed = false }
}

func NewDemo(opts ...DemoOption) *Demo {
	d := &Demo{
		currency:   DefaultCurrency,
		seed:       true,
		now:        time.Now,
		categories: slices.Clone(demoCategories),
		seeded:     make(map[string]bool),
		nextID:     1,
		nextGoalID: 1,
	}
	for _, opt := range opts {
		opt(d)
	}

	now := d.now()
	d.goals = append(d.goals, Goal{
		ID:            d.nextGoalID,
		TargetAmount:  money.New(80000, d.currency),
		CurrentAmount: money.New(0, d.currency),
		Year:          now.Year(),
		Month:         int(now.Month()),
		Description:   "Monthly goal",
	})
	d.nextGoalID++

	return d
}

func (d *Demo) Currency() string { return d.currency }

func (d *Demo) Authenticate(_ context.Context, kind AuthKind, email, secret string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || secret == "" {
		return AuthResult{}, fmt.Errorf("%s: %w", kind, ErrInvalidCredentials)
	}
	return AuthResult{
		Token: fmt.Sprintf("demo-token-%d", d.now().UnixNano()),
		Email: email,
	}, nil
}

func (d *Demo) GetSummary(_ context.Context, year, month int) ([]CategorySummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seedLocked(year, month)

	byCategory := make(map[int64]*CategorySummary)
	for _, t := range d.transactions {
		if !inMonth(t.Date, year, month) {
			continue
		}
		s, ok := byCategory[t.CategoryID]
		if !ok {
			s = &CategorySummary{
				CategoryID:   t.CategoryID,
				CategoryName: t.CategoryName,
				TotalAmount:  money.New(0, d.currency),
			}
			byCategory[t.CategoryID] = s
		}
		s.TotalAmount, _ = s.TotalAmount.Add(t.Amount)
		s.TransactionCount++
	}

	out := make([]CategorySummary, 0, len(byCategory))
	for _, c := range d.categories {
		if s, ok := byCategory[c.ID]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (d *Demo) GetDetail(_ context.Context, year, month int, categoryID int64) ([]Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seedLocked(year, month)

	var out []Transaction
	for _, t := range d.transactions {
		if t.CategoryID == categoryID && inMonth(t.Date, year, month) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (d *Demo) CreateTransaction(_ context.Context, nt NewTransaction) (Transaction, error) {
	if nt.Amount == nil || nt.Amount.IsNegative() {
		return Transaction{}, fmt.Errorf("create transaction: %w", &StatusError{Code: 400, Body: "amount must be zero or positive"})
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cat, ok := d.categoryLocked(nt.CategoryID)
	if !ok {
		return Transaction{}, fmt.Errorf("create transaction: category %d: %w", nt.CategoryID, ErrNotFound)
	}

	date := nt.Date
	if date.IsZero() {
		date = d.now()
	}
	d.seedLocked(date.Year(), int(date.Month()))

	t := Transaction{
		ID:           d.nextID,
		Amount:       nt.Amount,
		Description:  nt.Description,
		Date:         date,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
	}
	d.nextID++
	d.transactions = append(d.transactions, t)
	return t, nil
}

func (d *Demo) DeleteTransaction(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.transactions, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}
	d.transactions = slices.Delete(d.transactions, i, i+1)
	return nil
}

func (d *Demo) GetCategories(context.Context) ([]Category, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.categories), nil
}

func (d *Demo) GetGoals(context.Context) ([]Goal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.goals), nil
}

func (d *Demo) CreateGoal(_ context.Context, in GoalInput) (Goal, error) {
	if in.Month < 1 || in.Month > 12 {
		return Goal{}, fmt.Errorf("create goal: %w", &StatusError{Code: 400, Body: "month must be between 1 and 12"})
	}
	if in.TargetAmount == nil {
		return Goal{}, fmt.Errorf("create goal: %w", &StatusError{Code: 400, Body: "target amount is required"})
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	g := Goal{
		ID:            d.nextGoalID,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: money.New(0, d.currency),
		Year:          in.Year,
		Month:         in.Month,
		Description:   in.Description,
	}
	d.nextGoalID++
	d.goals = append(d.goals, g)
	return g, nil
}

func (d *Demo) UpdateGoal(_ context.Context, id int64, p GoalPatch) (Goal, error) {
	if p.Month != nil && (*p.Month < 1 || *p.Month > 12) {
		return Goal{}, fmt.Errorf("update goal %d: %w", id, &StatusError{Code: 400, Body: "month must be between 1 and 12"})
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.goals, func(g Goal) bool { return g.ID == id })
	if i < 0 {
		return Goal{}, fmt.Errorf("update goal %d: %w", id, ErrNotFound)
	}

	g := &d.goals[i]
	if p.TargetAmount != nil {
		g.TargetAmount = p.TargetAmount
	}
	if p.Year != nil {
		g.Year = *p.Year
	}
	if p.Month != nil {
		g.Month = *p.Month
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	return *g, nil
}

func (d *Demo) categoryLocked(id int64) (Category, bool) {
	i := slices.IndexFunc(d.categories, func(c Category) bool { return c.ID == id })
	if i < 0 {
		return Category{}, false
	}
	return d.categories[i], true
}

func (d *Demo) seedLocked(year, month int) {
	key := fmt.Sprintf("%04d-%02d", year, month)
	if !d.seed || d.seeded[key] {
		return
	}
	d.seeded[key] = true

	for _, s := range demoSeeds {
		cat, _ := d.categoryLocked(s.categoryID)
		d.transactions = append(d.transactions, Transaction{
			ID:           d.nextID,
			Amount:       money.New(s.minor, d.currency),
			Description:  s.description,
			Date:         time.Date(year, time.Month(month), s.day, 12, 0, 0, 0, time.UTC),
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
		})
		d.nextID++
	}
}

func inMonth(t time.Time, year, month int) bool {
	return t.Year() == year && int(t.Month()) == month
}
