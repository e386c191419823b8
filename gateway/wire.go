package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const wireDateLayout = "2006-01-02"

// DecimalToMoney converts a wire amount into minor units of currency,
// rounding half away from zero at the currency's fraction.
func DecimalToMoney(d decimal.Decimal, currency string) *money.Money {
	fraction := currencyFraction(currency)
	minor := d.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, currency)
}

// MoneyToDecimal is the inverse of DecimalToMoney.
func MoneyToDecimal(m *money.Money) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return decimal.New(m.Amount(), -int32(m.Currency().Fraction))
}

// ParseAmount reads a user-typed amount such as "25.50" or "S/ 25.50".
func ParseAmount(s, currency string) (*money.Money, error) {
	s = strings.TrimSpace(s)
	if c := money.GetCurrency(currency); c != nil {
		s = strings.TrimSpace(strings.TrimPrefix(s, c.Grapheme))
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q must not be negative", s)
	}

	return DecimalToMoney(d, currency), nil
}

func currencyFraction(code string) int {
	return money.New(0, code).Currency().Fraction
}

func encodeAmount(m *money.Money) json.Number {
	return json.Number(MoneyToDecimal(m).String())
}

// wireDate accepts either a bare date or an RFC 3339 timestamp.
type wireDate struct {
	time.Time
}

func (d *wireDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{wireDateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return fmt.Errorf("date %q: unrecognised format", s)
}

type authRequest struct {
	Email  string `json:"email"`
	Passwd string `json:"passwd"`
}

// authResponse covers the reply shapes seen in the wild: a flat token, a
// token nested under data, or an accessToken field.
type authResponse struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Email       string `json:"email"`
	Data        *struct {
		Token string `json:"token"`
		Email string `json:"email"`
	} `json:"data"`
}

func (r authResponse) normalise(submittedEmail string) (AuthResult, error) {
	var res AuthResult

	switch {
	case r.Token != "":
		res.Token = r.Token
	case r.Data != nil && r.Data.Token != "":
		res.Token = r.Data.Token
	case r.AccessToken != "":
		res.Token = r.AccessToken
	default:
		return AuthResult{}, ErrMissingToken
	}

	switch {
	case r.Email != "":
		res.Email = r.Email
	case r.Data != nil && r.Data.Email != "":
		res.Email = r.Data.Email
	default:
		res.Email = submittedEmail
	}

	return res, nil
}

type summaryDTO struct {
	CategoryID       int64           `json:"categoryId"`
	CategoryName     string          `json:"categoryName"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
}

func (s summaryDTO) toDomain(currency string) CategorySummary {
	return CategorySummary{
		CategoryID:       s.CategoryID,
		CategoryName:     s.CategoryName,
		TotalAmount:      DecimalToMoney(s.TotalAmount, currency),
		TransactionCount: s.TransactionCount,
	}
}

type transactionDTO struct {
	ID           int64           `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         wireDate        `json:"date"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
}

func (t transactionDTO) toDomain(currency string) Transaction {
	return Transaction{
		ID:           t.ID,
		Amount:       DecimalToMoney(t.Amount, currency),
		Description:  t.Description,
		Date:         t.Date.Time,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
	}
}

type createTransactionRequest struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	CategoryID  int64       `json:"categoryId"`
	Date        string      `json:"date"`
}

func newCreateTransactionRequest(t NewTransaction) createTransactionRequest {
	return createTransactionRequest{
		Amount:      encodeAmount(t.Amount),
		Description: t.Description,
		CategoryID:  t.CategoryID,
		Date:        t.Date.Format(wireDateLayout),
	}
}

type categoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type goalDTO struct {
	ID            int64           `json:"id"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Description   string          `json:"description,omitempty"`
}

func (g goalDTO) toDomain(currency string) Goal {
	return Goal{
		ID:            g.ID,
		TargetAmount:  DecimalToMoney(g.TargetAmount, currency),
		CurrentAmount: DecimalToMoney(g.CurrentAmount, currency),
		Year:          g.Year,
		Month:         g.Month,
		Description:   g.Description,
	}
}

type goalRequest struct {
	TargetAmount *json.Number `json:"targetAmount,omitempty"`
	Month        *int         `json:"month,omitempty"`
	Year         *int         `json:"year,omitempty"`
	Description  *string      `json:"description,omitempty"`
}

func newGoalCreateRequest(g GoalInput) goalRequest {
	amount := encodeAmount(g.TargetAmount)
	req := goalRequest{TargetAmount: &amount, Month: &g.Month, Year: &g.Year}
	if g.Description != "" {
		req.Description = &g.Description
	}
	return req
}

func newGoalPatchRequest(p GoalPatch) goalRequest {
	req := goalRequest{Month: p.Month, Year: p.Year, Description: p.Description}
	if p.TargetAmount != nil {
		amount := encodeAmount(p.TargetAmount)
		req.TargetAmount = &amount
	}
	return req
}
