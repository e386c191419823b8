package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// DefaultTimeout bounds every request made by Client.
const DefaultTimeout = 15 * time.Second

const maxErrorBody = 256

// Client implements Gateway over the backend's HTTP/JSON API.
type Client struct {
	baseURL  *url.URL
	tokens   TokenSource
	http     *http.Client
	currency string
	logger   *log.Logger

	pingTimeout time.Duration
	cooldown     time.Duration
	now          func() time.Time

	reach *Reachability
}

var _ Gateway = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCurrency sets the currency amounts are interpreted in.
func WithCurrency(code string) Option {
	return func(c *Client) { c.currency = code }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPingTimeout bounds the one-off reachability ping.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Client) { c.pingTimeout = d }
}

// WithRetryCooldown sets how long an unreachable backend is skipped before
// probing again.
func WithRetryCooldown(d time.Duration) Option {
	return func(c *Client) { c.cooldown = d }
}

// NewClient builds a client for the backend at baseURL. tokens may be nil,
// in which case requests are sent without credentials.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	c := &Client{
		baseURL:      u,
		tokens:       tokens,
		currency:     DefaultCurrency,
		logger:       log.Default(),
		pingTimeout: defaultPingTimeout,
		cooldown:     defaultCooldown,
		now:          time.Now,
		http:         &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http.Transport == nil {
		c.http.Transport = NewLoggingTransport(http.DefaultTransport, c.logger)
	}

	c.reach = newReachability(u.String(), c.http, c.logger)
	c.reach.pingTimeout = c.pingTimeout
	c.reach.cooldown = c.cooldown
	c.reach.now = c.now

	return c, nil
}

// Currency is the currency amounts are reported in.
func (c *Client) Currency() string { return c.currency }

// Availability reports what the client currently believes about the backend.
func (c *Client) Availability() Availability { return c.reach.State() }

// ResetReachability makes the next request ping the backend again.
func (c *Client) ResetReachability() { c.reach.Reset() }

func (c *Client) Authenticate(ctx context.Context, kind AuthKind, email, secret string) (AuthResult, error) {
	path := "/authentication/login"
	if kind == Register {
		path = "/authentication/register"
	}

	var resp authResponse
	err := c.do(ctx, http.MethodPost, path, nil, authRequest{Email: email, Passwd: secret}, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict:
				return AuthResult{}, fmt.Errorf("%s: %w", kind, ErrInvalidCredentials)
			}
		}
		return AuthResult{}, fmt.Errorf("%s: %w", kind, err)
	}

	res, err := resp.normalise(email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%s: %w", kind, err)
	}

	c.logger.Info("authenticated", "kind", kind, "email", res.Email)
	return res, nil
}

func (c *Client) GetSummary(ctx context.Context, year, month int) ([]CategorySummary, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))

	var dtos []summaryDTO
	if err := c.list(ctx, "/expenses_summary", q, &dtos); err != nil {
		return nil, fmt.Errorf("get summary %d-%02d: %w", year, month, err)
	}

	out := make([]CategorySummary, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain(c.currency)
	}
	return out, nil
}

func (c *Client) GetDetail(ctx context.Context, year, month int, categoryID int64) ([]Transaction, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	q.Set("categoryId", strconv.FormatInt(categoryID, 10))

	var dtos []transactionDTO
	if err := c.list(ctx, "/expenses/detail", q, &dtos); err != nil {
		return nil, fmt.Errorf("get detail %d-%02d category %d: %w", year, month, categoryID, err)
	}

	out := make([]Transaction, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain(c.currency)
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, t NewTransaction) (Transaction, error) {
	var dto transactionDTO
	if err := c.do(ctx, http.MethodPost, "/expenses", nil, newCreateTransactionRequest(t), &dto); err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return dto.toDomain(c.currency), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	path := "/expenses/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var dtos []categoryDTO
	if err := c.list(ctx, "/expenses_category", nil, &dtos); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	out := make([]Category, len(dtos))
	for i, d := range dtos {
		out[i] = Category{ID: d.ID, Name: d.Name}
	}
	return out, nil
}

func (c *Client) GetGoals(ctx context.Context) ([]Goal, error) {
	var dtos []goalDTO
	if err := c.list(ctx, "/goals", nil, &dtos); err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}

	out := make([]Goal, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain(c.currency)
	}
	return out, nil
}

func (c *Client) CreateGoal(ctx context.Context, g GoalInput) (Goal, error) {
	var dto goalDTO
	if err := c.do(ctx, http.MethodPost, "/goals", nil, newGoalCreateRequest(g), &dto); err != nil {
		return Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return dto.toDomain(c.currency), nil
}

func (c *Client) UpdateGoal(ctx context.Context, id int64, p GoalPatch) (Goal, error) {
	var dto goalDTO
	path := "/goals/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPatch, path, nil, newGoalPatchRequest(p), &dto); err != nil {
		return Goal{}, fmt.Errorf("update goal %d: %w", id, err)
	}
	return dto.toDomain(c.currency), nil
}

// list fetches a JSON array. A missing resource or an undecodable body yields
// an empty result rather than an error.
func (c *Client) list(ctx context.Context, path string, q url.Values, out any) error {
	err := c.do(ctx, http.MethodGet, path, q, nil, out)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		c.logger.Debug("resource not found, treating as empty", "path", path)
		return nil
	case errors.Is(err, ErrMalformedResponse):
		c.logger.Warn("ignoring malformed response", "path", path, "error", err)
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	if err := c.reach.Check(ctx); err != nil {
		return err
	}

	u := c.baseURL.JoinPath(path)
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.reach.MarkUnreachable()
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(data)), maxErrorBody)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
