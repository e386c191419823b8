package devserver

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Rshep3087/ahorrista/gateway"
)

const dateLayout = "2006-01-02"

type credentialsRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Passwd string `json:"passwd" binding:"required,min=4"`
}

type authData struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type authResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    authData `json:"data"`
}

type summaryResponse struct {
	CategoryID       int64       `json:"categoryId"`
	CategoryName     string      `json:"categoryName"`
	TotalAmount      json.Number `json:"totalAmount"`
	TransactionCount int         `json:"transactionCount"`
}

type transactionResponse struct {
	ID           int64       `json:"id"`
	Amount       json.Number `json:"amount"`
	Description  string      `json:"description"`
	Date         string      `json:"date"`
	CategoryID   int64       `json:"categoryId"`
	CategoryName string      `json:"categoryName"`
}

type createExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"categoryId" binding:"required"`
	Date        string          `json:"date"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type goalResponse struct {
	ID            int64       `json:"id"`
	TargetAmount  json.Number `json:"targetAmount"`
	CurrentAmount json.Number `json:"currentAmount"`
	Month         int         `json:"month"`
	Year          int         `json:"year"`
	Description   string      `json:"description,omitempty"`
}

type goalRequest struct {
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	Month        *int             `json:"month"`
	Year         *int             `json:"year"`
	Description  *string          `json:"description"`
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newSummaryResponse(s gateway.CategorySummary) summaryResponse {
	return summaryResponse{
		CategoryID:       s.CategoryID,
		CategoryName:     s.CategoryName,
		TotalAmount:      amount(gateway.MoneyToDecimal(s.TotalAmount)),
		TransactionCount: s.TransactionCount,
	}
}

func newTransactionResponse(t gateway.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Amount:       amount(gateway.MoneyToDecimal(t.Amount)),
		Description:  t.Description,
		Date:         t.Date.Format(dateLayout),
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
	}
}

func newGoalResponse(g gateway.Goal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		TargetAmount:  amount(gateway.MoneyToDecimal(g.TargetAmount)),
		CurrentAmount: amount(gateway.MoneyToDecimal(g.CurrentAmount)),
		Month:         g.Month,
		Year:          g.Year,
		Description:   g.Description,
	}
}
