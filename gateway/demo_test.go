package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/carlmjohnson/be"
)

func TestDemoSummaryAggregatesSeededMonth(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()

	got, err := d.GetSummary(ctx, 2025, 7)
	be.NilErr(t, err)
	be.Equal(t, 5, len(got))
	be.Equal(t, "Food", got[0].CategoryName)
	be.Equal(t, int64(2550+4500+1275+6020), got[0].TotalAmount.Amount())
	be.Equal(t, 4, got[0].TransactionCount)

	// second read does not reseed
	again, err := d.GetSummary(ctx, 2025, 7)
	be.NilErr(t, err)
	be.Equal(t, got[0].TotalAmount.Amount(), again[0].TotalAmount.Amount())
}

func TestDemoDetailMatchesSummary(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()

	summary, err := d.GetSummary(ctx, 2024, 12)
	be.NilErr(t, err)

	for _, s := range summary {
		txs, err := d.GetDetail(ctx, 2024, 12, s.CategoryID)
		be.NilErr(t, err)
		be.Equal(t, s.TransactionCount, len(txs))

		total := money.New(0, DefaultCurrency)
		for i, tx := range txs {
			total, _ = total.Add(tx.Amount)
			if i > 0 {
				be.False(t, tx.Date.After(txs[i-1].Date))
			}
		}
		be.Equal(t, s.TotalAmount.Amount(), total.Amount())
	}
}

func TestDemoCreateAndDelete(t *testing.T) {
	d := NewDemo(DemoUnseeded())
	ctx := context.Background()

	tx, err := d.CreateTransaction(ctx, NewTransaction{
		Amount:      money.New(1999, DefaultCurrency),
		Description: "Notebook",
		CategoryID:  7,
		Date:        time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	be.NilErr(t, err)
	be.Equal(t, "Education", tx.CategoryName)

	summary, err := d.GetSummary(ctx, 2025, 3)
	be.NilErr(t, err)
	be.Equal(t, 1, len(summary))
	be.Equal(t, int64(1999), summary[0].TotalAmount.Amount())

	be.NilErr(t, d.DeleteTransaction(ctx, tx.ID))
	be.True(t, errors.Is(d.DeleteTransaction(ctx, tx.ID), ErrNotFound))

	summary, err = d.GetSummary(ctx, 2025, 3)
	be.NilErr(t, err)
	be.Equal(t, 0, len(summary))
}

func TestDemoCreateRejectsUnknownCategory(t *testing.T) {
	d := NewDemo(DemoUnseeded())
	_, err := d.CreateTransaction(context.Background(), NewTransaction{
		Amount:     money.New(100, DefaultCurrency),
		CategoryID: 99,
	})
	be.True(t, errors.Is(err, ErrNotFound))
}

func TestDemoAuthenticate(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()

	res, err := d.Authenticate(ctx, Register, " ana@example.com ", "pw")
	be.NilErr(t, err)
	be.Equal(t, "ana@example.com", res.Email)
	be.True(t, strings.HasPrefix(res.Token, "demo-token-"))

	_, err = d.Authenticate(ctx, Login, "ana@example.com", "")
	be.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestDemoGoals(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()

	goals, err := d.GetGoals(ctx)
	be.NilErr(t, err)
	be.Equal(t, 1, len(goals))

	g, err := d.CreateGoal(ctx, GoalInput{TargetAmount: money.New(50000, DefaultCurrency), Year: 2025, Month: 8})
	be.NilErr(t, err)
	be.Equal(t, int64(2), g.ID)

	month := 9
	updated, err := d.UpdateGoal(ctx, g.ID, GoalPatch{Month: &month})
	be.NilErr(t, err)
	be.Equal(t, 9, updated.Month)
	be.Equal(t, int64(50000), updated.TargetAmount.Amount())

	bad := 13
	_, err = d.UpdateGoal(ctx, g.ID, GoalPatch{Month: &bad})
	be.Nonzero(t, err)

	_, err = d.UpdateGoal(ctx, 404, GoalPatch{})
	be.True(t, errors.Is(err, ErrNotFound))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: &StatusError{Code: 401}, want: "Your session is no longer valid. Log out and sign in again."},
		{name: "timeout", err: context.DeadlineExceeded, want: "The server took too long to respond."},
		{name: "other", err: errors.New("kaput"), want: "Something went wrong: kaput"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
