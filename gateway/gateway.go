// Package gateway talks to the expense-tracking backend.
//
// Gateway is the contract the views depend on. Client implements it over
// HTTP/JSON; Demo implements it in memory for offline use and tests.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is used for display when none is configured. Amounts on the
// wire carry no currency code.
const DefaultCurrency = "PEN"

// Failure taxonomy. Callers match with errors.Is.
var (
	ErrUnreachable        = errors.New("backend unreachable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("authentication response did not include a token")
	ErrUnauthorized       = errors.New("session expired or not authorized")
	ErrNotFound           = errors.New("not found")
	ErrMalformedResponse  = errors.New("malformed response")
)

// StatusError is returned for non-2xx replies that have no more specific
// meaning.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap maps well-known statuses onto the sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// AuthKind selects the authentication endpoint.
type AuthKind int

const (
	Login AuthKind = iota
	Register
)

func (k AuthKind) String() string {
	switch k {
	case Login:
		return "login"
	case Register:
		return "register"
	}
	return "unknown"
}

// AuthResult is a normalised authentication reply.
type AuthResult struct {
	Token string
	Email string
}

type Category struct {
	ID   int64
	Name string
}

// CategorySummary is one row of a month's spending grouped by category.
type CategorySummary struct {
	CategoryID       int64
	CategoryName     string
	TotalAmount      *money.Money
	TransactionCount int
}

// Transaction is a single expense.
type Transaction struct {
	ID           int64
	Amount       *money.Money
	Description  string
	Date         time.Time
	CategoryID   int64
	CategoryName string
}

// NewTransaction is the payload for CreateTransaction.
type NewTransaction struct {
	Amount      *money.Money
	Description string
	CategoryID  int64
	Date        time.Time
}

// Goal is a monthly savings target.
type Goal struct {
	ID            int64
	TargetAmount  *money.Money
	CurrentAmount *money.Money
	Year          int
	Month         int
	Description   string
}

// GoalInput creates a goal.
type GoalInput struct {
	TargetAmount *money.Money
	Year         int
	Month        int
	Description  string
}

// GoalPatch updates a goal. Nil fields are left untouched.
type GoalPatch struct {
	TargetAmount *money.Money
	Year         *int
	Month        *int
	Description  *string
}

// Gateway is the backend contract.
type Gateway interface {
	Authenticate(ctx context.Context, kind AuthKind, email, secret string) (AuthResult, error)
	GetSummary(ctx context.Context, year, month int) ([]CategorySummary, error)
	GetDetail(ctx context.Context, year, month int, categoryID int64) ([]Transaction, error)
	CreateTransaction(ctx context.Context, t NewTransaction) (Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetCategories(ctx context.Context) ([]Category, error)
	GetGoals(ctx context.Context) ([]Goal, error)
	CreateGoal(ctx context.Context, g GoalInput) (Goal, error)
	UpdateGoal(ctx context.Context, id int64, p GoalPatch) (Goal, error)
}

// TokenSource yields the bearer credential for outgoing requests. An empty
// string means no credential is stored.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// UserMessage turns a gateway error into text fit for a status line.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnreachable):
		return "Cannot reach the server. Press r to retry."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrMissingToken):
		return "The server did not return a session token."
	case errors.Is(err, ErrUnauthorized):
		return "Your session is no longer valid. Log out and sign in again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond."
	}

	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("The server returned an error (%d).", se.Code)
	}

	return "Something went wrong: " + err.Error()
}
