package main

import (
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/carlmjohnson/be"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
)

func TestNewMonthReport(t *testing.T) {
	c, err := month.New(2025, 7)
	be.NilErr(t, err)

	r := newMonthReport(c, "PEN", []gateway.CategorySummary{
		{CategoryID: 1, CategoryName: "Food", TotalAmount: money.New(15800, "PEN"), TransactionCount: 3},
		{CategoryID: 2, CategoryName: "Transport", TotalAmount: money.New(4200, "PEN"), TransactionCount: 1},
	})

	j := r.ToJSON()
	be.Equal(t, "2025-07", j.Month)
	be.Equal(t, "200.00", j.Total)
	be.Equal(t, 2, len(j.Categories))
	be.Equal(t, "79.0%", j.Categories[0].Share)
	be.Equal(t, "21.0%", j.Categories[1].Share)
	be.Equal(t, "42.00", j.Categories[1].Total)
}

func TestNewMonthReportEmpty(t *testing.T) {
	r := newMonthReport(month.Now(), "PEN", nil)

	j := r.ToJSON()
	be.Equal(t, "0.00", j.Total)
	be.Equal(t, 0, len(j.Categories))
}

func TestAmountString(t *testing.T) {
	tests := []struct {
		name string
		in   *money.Money
		want string
	}{
		{"nil", nil, "0"},
		{"two decimals", money.New(2550, "PEN"), "25.50"},
		{"no minor unit", money.New(1500, "JPY"), "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.want, amountString(tt.in))
		})
	}
}

func TestSumTransactions(t *testing.T) {
	ts := []gateway.Transaction{
		{Amount: money.New(1000, "PEN")},
		{Amount: nil},
		{Amount: money.New(250, "PEN")},
		{Amount: money.New(999, "USD")},
	}
	be.Equal(t, "12.50", amountString(sumTransactions(ts, "PEN")))
}
