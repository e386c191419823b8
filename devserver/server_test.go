package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/carlmjohnson/be"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Rshep3087/ahorrista/gateway"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	srv := httptest.NewServer(New(gateway.NewDemo(), opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, url string, tokens gateway.TokenSource) *gateway.Client {
	t.Helper()
	c, err := gateway.NewClient(url, tokens, gateway.WithLogger(log.New(io.Discard)))
	be.NilErr(t, err)
	return c
}

// tokenHolder mimics the session gate: empty until sign-in.
type tokenHolder struct{ token string }

func (h *tokenHolder) Token() string { return h.token }

func TestClientAgainstDevServer(t *testing.T) {
	srv := newServer(t)
	tokens := &tokenHolder{}
	c := newClient(t, srv.URL, tokens)
	ctx := context.Background()

	// protected routes reject anonymous callers
	_, err := c.GetSummary(ctx, 2025, 7)
	be.True(t, errors.Is(err, gateway.ErrUnauthorized))

	res, err := c.Authenticate(ctx, gateway.Register, "Ana@Example.com", "hunter22")
	be.NilErr(t, err)
	be.Equal(t, "ana@example.com", res.Email)
	be.Nonzero(t, res.Token)
	tokens.token = res.Token

	summary, err := c.GetSummary(ctx, 2025, 7)
	be.NilErr(t, err)
	be.Equal(t, 5, len(summary))
	be.Equal(t, "Food", summary[0].CategoryName)
	be.Equal(t, int64(14345), summary[0].TotalAmount.Amount())

	detail, err := c.GetDetail(ctx, 2025, 7, summary[0].CategoryID)
	be.NilErr(t, err)
	be.Equal(t, summary[0].TransactionCount, len(detail))

	created, err := c.CreateTransaction(ctx, gateway.NewTransaction{
		Amount:      money.New(999, gateway.DefaultCurrency),
		Description: "Coffee",
		CategoryID:  1,
		Date:        time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
	})
	be.NilErr(t, err)
	be.Equal(t, "Food", created.CategoryName)
	be.Equal(t, int64(999), created.Amount.Amount())

	be.NilErr(t, c.DeleteTransaction(ctx, created.ID))

	err = c.DeleteTransaction(ctx, created.ID)
	be.True(t, errors.Is(err, gateway.ErrNotFound))

	cats, err := c.GetCategories(ctx)
	be.NilErr(t, err)
	be.Equal(t, 8, len(cats))

	goal, err := c.CreateGoal(ctx, gateway.GoalInput{TargetAmount: money.New(50000, gateway.DefaultCurrency), Year: 2025, Month: 8})
	be.NilErr(t, err)
	desc := "Holiday"
	goal, err = c.UpdateGoal(ctx, goal.ID, gateway.GoalPatch{Description: &desc})
	be.NilErr(t, err)
	be.Equal(t, "Holiday", goal.Description)
	be.Equal(t, int64(50000), goal.TargetAmount.Amount())

	goals, err := c.GetGoals(ctx)
	be.NilErr(t, err)
	be.Equal(t, 2, len(goals))
}

func TestLogin(t *testing.T) {
	srv := newServer(t, WithUser("ana@example.com", "correct-horse"))
	c := newClient(t, srv.URL, nil)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, gateway.Login, "ana@example.com", "wrong-pass")
	be.True(t, errors.Is(err, gateway.ErrInvalidCredentials))

	res, err := c.Authenticate(ctx, gateway.Login, "ana@example.com", "correct-horse")
	be.NilErr(t, err)
	be.Equal(t, "ana@example.com", res.Email)

	_, err = c.Authenticate(ctx, gateway.Register, "ana@example.com", "another")
	be.True(t, errors.Is(err, gateway.ErrInvalidCredentials))
}

func TestRequestValidation(t *testing.T) {
	srv := newServer(t)

	body, _ := json.Marshal(map[string]string{"email": "a@b.co", "passwd": "secret"})
	resp, err := http.Post(srv.URL+"/authentication/register", "application/json", bytes.NewReader(body))
	be.NilErr(t, err)
	var auth authResponse
	be.NilErr(t, json.NewDecoder(resp.Body).Decode(&auth))
	resp.Body.Close()
	be.Equal(t, "success", auth.Message)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "bad month", method: http.MethodGet, path: "/expenses_summary?year=2025&month=13", want: http.StatusBadRequest},
		{name: "missing year", method: http.MethodGet, path: "/expenses_summary?month=1", want: http.StatusBadRequest},
		{name: "bad category", method: http.MethodGet, path: "/expenses/detail?year=2025&month=1&categoryId=x", want: http.StatusBadRequest},
		{name: "negative amount", method: http.MethodPost, path: "/expenses", body: `{"amount":-1,"categoryId":1}`, want: http.StatusBadRequest},
		{name: "bad date", method: http.MethodPost, path: "/expenses", body: `{"amount":1,"categoryId":1,"date":"July"}`, want: http.StatusBadRequest},
		{name: "unknown goal", method: http.MethodPatch, path: "/goals/99", body: `{}`, want: http.StatusNotFound},
		{name: "goal missing fields", method: http.MethodPost, path: "/goals", body: `{"month":1}`, want: http.StatusBadRequest},
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reqBody io.Reader
			if tt.body != "" {
				reqBody = bytes.NewReader([]byte(tt.body))
			}
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, reqBody)
			be.NilErr(t, err)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+auth.Data.Token)

			resp, err := http.DefaultClient.Do(req)
			be.NilErr(t, err)
			resp.Body.Close()
			be.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL, gateway.StaticToken("forged"))

	_, err := c.GetCategories(context.Background())
	be.True(t, errors.Is(err, gateway.ErrUnauthorized))
}
