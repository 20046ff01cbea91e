// Package api provides the HTTP client for the shared expense server.
//
// All operations are single-shot: no retries, no caching. Write requests are
// authenticated with an X-Signature header computed over the exact bytes of
// the JSON body (see the sign package).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mlcortes/wburn/internal/log"
	"github.com/mlcortes/wburn/internal/model"
	"github.com/mlcortes/wburn/internal/sign"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/mlcortes/wburn/1.0"
)

// Client talks to the expense server.
type Client struct {
	baseURL string
	secret  []byte
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the given server. Returns an error when the
// base URL or signing secret is missing, since neither has a usable default.
func NewClient(baseURL, secret string, logger *log.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api: server URL is required")
	}
	if secret == "" {
		return nil, errors.New("api: signing secret is required")
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		baseURL: baseURL,
		secret:  []byte(secret),
		http:    &http.Client{},
		logger:  logger,
	}, nil
}

// ExpenseBody is the write payload for create and update. Field order here
// fixes the marshaled byte order the signature is computed over.
type ExpenseBody struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"` // YYYY-MM-DD
}

// RangeQuery restricts a FetchExpensesRange call. Zero-value fields are
// omitted from the query string. Dates are YYYY-MM-DD.
type RangeQuery struct {
	StartDate      string
	EndDate        string
	WeekCommencing string
}

// budgetResponse uses a pointer so an absent field is distinguishable from a
// zero budget.
type budgetResponse struct {
	WeeklyBudget *float64 `json:"weekly_budget"`
}

// rawExpense mirrors model.Expense with pointer fields for strict presence
// checks on list elements.
type rawExpense struct {
	ID          *string  `json:"id"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

// FetchBudget returns the server-held weekly budget.
func (c *Client) FetchBudget(ctx context.Context) (float64, error) {
	body, err := c.do(ctx, http.MethodGet, "/budget", nil, "")
	if err != nil {
		return 0, err
	}

	var resp budgetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, &ParseError{Endpoint: "/budget", Err: err}
	}
	if resp.WeeklyBudget == nil {
		return 0, &ParseError{Endpoint: "/budget", Err: errors.New("missing weekly_budget field")}
	}
	return *resp.WeeklyBudget, nil
}

// FetchExpenses returns every expense the server holds. An empty or absent
// response body is an empty list, not an error.
func (c *Client) FetchExpenses(ctx context.Context) ([]model.Expense, error) {
	return c.fetchExpenses(ctx, "/expenses")
}

// FetchExpensesRange returns the expenses matching q, using the server's
// date-filter query parameters.
func (c *Client) FetchExpensesRange(ctx context.Context, q RangeQuery) ([]model.Expense, error) {
	vals := url.Values{}
	if q.StartDate != "" {
		vals.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		vals.Set("end_date", q.EndDate)
	}
	if q.WeekCommencing != "" {
		vals.Set("week_commencing", q.WeekCommencing)
	}

	path := "/expenses"
	if enc := vals.Encode(); enc != "" {
		path += "?" + enc
	}
	return c.fetchExpenses(ctx, path)
}

func (c *Client) fetchExpenses(ctx context.Context, path string) ([]model.Expense, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []model.Expense{}, nil
	}

	var raw []rawExpense
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Endpoint: "/expenses", Err: err}
	}

	expenses := make([]model.Expense, 0, len(raw))
	for i, r := range raw {
		if r.ID == nil || r.Amount == nil || r.Description == nil || r.Date == nil {
			return nil, &ParseError{
				Endpoint: "/expenses",
				Err:      fmt.Errorf("element %d is missing a required field", i),
			}
		}
		expenses = append(expenses, model.Expense{
			ID:          *r.ID,
			Amount:      *r.Amount,
			Description: *r.Description,
			Date:        *r.Date,
		})
	}
	return expenses, nil
}

// CreateExpense posts a new expense and returns the server-assigned id.
func (c *Client) CreateExpense(ctx context.Context, e ExpenseBody) (string, error) {
	payload, signature, err := c.signedBody(e)
	if err != nil {
		return "", err
	}

	body, err := c.do(ctx, http.MethodPost, "/expenses", payload, signature)
	if err != nil {
		return "", err
	}

	var resp struct {
		Expense *struct {
			ID *string `json:"id"`
		} `json:"expense"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ParseError{Endpoint: "/expenses", Err: err}
	}
	if resp.Expense == nil || resp.Expense.ID == nil {
		return "", &ParseError{Endpoint: "/expenses", Err: errors.New("missing expense.id in response")}
	}
	return *resp.Expense.ID, nil
}

// UpdateExpense patches the expense with the given id. The response body is
// ignored beyond the status check.
func (c *Client) UpdateExpense(ctx context.Context, id string, e ExpenseBody) error {
	payload, signature, err := c.signedBody(e)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, "/expenses/"+url.PathEscape(id), payload, signature)
	return err
}

// DeleteExpense removes the expense with the given id. The delete carries a
// signed {"id": ...} body; the signature covers that body, not the URL.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	payload, signature, err := c.signedBody(struct {
		ID string `json:"id"`
	}{ID: id})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), payload, signature)
	return err
}

// SetBudget writes a new weekly budget to the server.
func (c *Client) SetBudget(ctx context.Context, amount float64) error {
	payload, signature, err := c.signedBody(struct {
		WeeklyBudget float64 `json:"weekly_budget"`
	}{WeeklyBudget: amount})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, "/budget", payload, signature)
	return err
}

// signedBody marshals v once and signs the resulting bytes. The same bytes
// are sent as the request body.
func (c *Client) signedBody(v any) ([]byte, string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("api: encoding request body: %w", err)
	}
	return payload, sign.Sign(c.secret, payload), nil
}

// do performs one request and returns the response body. Any status outside
// 2xx becomes a StatusError carrying the server's error text.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, signature string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}

	c.logger.Debug("request", log.FieldRequestID, requestID, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("request failed", log.FieldRequestID, requestID, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
