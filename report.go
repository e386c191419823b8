package main

import (
	"github.com/Rhymond/go-money"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
	"github.com/Rshep3087/ahorrista/summary"
)

// MonthReport is a month's summary with the transactions behind every
// category. It is shared by the summary, detail and report commands.
type MonthReport struct {
	Month      month.Cursor
	Currency   string
	Total      *money.Money
	Categories []*CategoryReport
}

// CategoryReport is one category of a MonthReport. Transactions is nil when
// they were not requested.
type CategoryReport struct {
	ID           int64
	Name         string
	Count        int
	Total        *money.Money
	Share        float64
	Transactions []gateway.Transaction
}

// newMonthReport computes totals and shares from a summary response.
func newMonthReport(c month.Cursor, currency string, entries []gateway.CategorySummary) *MonthReport {
	shares := summary.SharesOf(entries, currency)

	r := &MonthReport{
		Month:      c,
		Currency:   currency,
		Total:      summary.TotalOf(entries, currency),
		Categories: make([]*CategoryReport, len(entries)),
	}
	for i, e := range entries {
		cr := &CategoryReport{
			ID:    e.CategoryID,
			Name:  e.CategoryName,
			Count: e.TransactionCount,
			Total: e.TotalAmount,
		}
		if shares != nil {
			cr.Share = shares[i].Percent
		}
		r.Categories[i] = cr
	}
	return r
}

// MonthReportJSON converts MonthReport to a JSON-friendly format for CLI output.
type MonthReportJSON struct {
	Month      string                `json:"month"`
	Currency   string                `json:"currency"`
	Total      string                `json:"total"`
	Categories []*CategoryReportJSON `json:"categories"`
}

// CategoryReportJSON is the JSON-friendly version of CategoryReport.
type CategoryReportJSON struct {
	ID           int64              `json:"category_id"`
	Name         string             `json:"category_name"`
	Count        int                `json:"transaction_count"`
	Total        string             `json:"total"`
	Share        string             `json:"share"`
	Transactions []*TransactionJSON `json:"transactions,omitempty"`
}

// TransactionJSON is the JSON-friendly version of gateway.Transaction.
type TransactionJSON struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
}

// ToJSON converts the report to its JSON shape.
func (r *MonthReport) ToJSON() *MonthReportJSON {
	out := &MonthReportJSON{
		Month:      r.Month.String(),
		Currency:   r.Currency,
		Total:      amountString(r.Total),
		Categories: make([]*CategoryReportJSON, len(r.Categories)),
	}
	for i, c := range r.Categories {
		cj := &CategoryReportJSON{
			ID:    c.ID,
			Name:  c.Name,
			Count: c.Count,
			Total: amountString(c.Total),
			Share: summary.FormatShare(c.Share),
		}
		for _, t := range c.Transactions {
			cj.Transactions = append(cj.Transactions, transactionToJSON(t))
		}
		out.Categories[i] = cj
	}
	return out
}

func transactionToJSON(t gateway.Transaction) *TransactionJSON {
	return &TransactionJSON{
		ID:           t.ID,
		Date:         t.Date.Format(dateLayout),
		Description:  t.Description,
		Amount:       amountString(t.Amount),
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
	}
}

// amountString renders m as a plain decimal with the currency's precision.
func amountString(m *money.Money) string {
	if m == nil {
		return "0"
	}
	return gateway.MoneyToDecimal(m).StringFixed(int32(m.Currency().Fraction))
}

func displayMoney(m *money.Money) string {
	if m == nil {
		return "-"
	}
	return m.Display()
}

// sumTransactions adds up the amounts of ts. Amounts in another currency are
// left out.
func sumTransactions(ts []gateway.Transaction, currency string) *money.Money {
	total := money.New(0, currency)
	for _, t := range ts {
		if t.Amount == nil {
			continue
		}
		if sum, err := total.Add(t.Amount); err == nil {
			total = sum
		}
	}
	return total
}
