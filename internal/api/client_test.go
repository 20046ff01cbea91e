package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlcortes/wburn/internal/sign"
)

const testSecret = "test-shared-secret"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, testSecret, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// verifySignature checks that the request's X-Signature matches its body.
func verifySignature(t *testing.T, r *http.Request, body []byte) {
	t.Helper()
	got := r.Header.Get("X-Signature")
	want := sign.Sign([]byte(testSecret), body)
	if got != want {
		t.Errorf("X-Signature = %s, want %s (body %s)", got, want, body)
	}
}

func TestNewClient_RequiresURLAndSecret(t *testing.T) {
	if _, err := NewClient("", "s", nil); err == nil {
		t.Error("NewClient without URL: want error")
	}
	if _, err := NewClient("https://spend.example.net", "", nil); err == nil {
		t.Error("NewClient without secret: want error")
	}
}

func TestFetchBudget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/budget" {
			t.Errorf("got %s %s, want GET /budget", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		_, _ = io.WriteString(w, `{"weekly_budget": 110.0}`)
	})

	got, err := c.FetchBudget(context.Background())
	if err != nil {
		t.Fatalf("FetchBudget: %v", err)
	}
	if got != 110.0 {
		t.Fatalf("FetchBudget = %.2f, want 110", got)
	}
}

func TestFetchBudget_MissingField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"budget": 110.0}`)
	})

	_, err := c.FetchBudget(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("FetchBudget = %v, want ParseError", err)
	}
}

func TestFetchBudget_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{not json`)
	})

	_, err := c.FetchBudget(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("FetchBudget = %v, want ParseError", err)
	}
}

func TestFetchBudget_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "budget store offline", http.StatusServiceUnavailable)
	})

	_, err := c.FetchBudget(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("FetchBudget = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", se.StatusCode)
	}
	if se.Body != "budget store offline" {
		t.Errorf("Body = %q, want server text", se.Body)
	}
}

func TestFetchExpenses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/expenses" {
			t.Errorf("path = %s, want /expenses", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[
			{"id":"e1","amount":20,"description":"groceries","date":"2024-06-10"},
			{"id":"e2","amount":5.5,"description":"coffee","date":"2024-06-09"}
		]`)
	})

	got, err := c.FetchExpenses(context.Background())
	if err != nil {
		t.Fatalf("FetchExpenses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "e1" || got[0].Amount != 20 || got[0].Description != "groceries" || got[0].Date != "2024-06-10" {
		t.Errorf("first expense = %+v", got[0])
	}
}

func TestFetchExpenses_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

	got, err := c.FetchExpenses(context.Background())
	if err != nil {
		t.Fatalf("FetchExpenses with empty body: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestFetchExpenses_MissingFieldFailsWholeFetch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":"e1","amount":20,"description":"groceries","date":"2024-06-10"},
			{"id":"e2","amount":5.5,"date":"2024-06-09"}
		]`)
	})

	_, err := c.FetchExpenses(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("FetchExpenses = %v, want ParseError (no partial results)", err)
	}
}

func TestFetchExpenses_WrongTypeFailsWholeFetch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"e1","amount":"twenty","description":"x","date":"2024-06-10"}]`)
	})

	_, err := c.FetchExpenses(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("FetchExpenses = %v, want ParseError", err)
	}
}

func TestFetchExpensesRange_QueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != "2024-06-01" || q.Get("end_date") != "2024-06-30" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `[]`)
	})

	got, err := c.FetchExpensesRange(context.Background(), RangeQuery{
		StartDate: "2024-06-01",
		EndDate:   "2024-06-30",
	})
	if err != nil {
		t.Fatalf("FetchExpensesRange: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestCreateExpense(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/expenses" {
			t.Errorf("got %s %s, want POST /expenses", r.Method, r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		verifySignature(t, r, body)

		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("request body not JSON: %v", err)
		}
		if payload["amount"] != 15.5 || payload["description"] != "coffee" || payload["date"] != "2024-06-11" {
			t.Errorf("payload = %v", payload)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"expense": {"id": "e9", "amount": 15.5}}`)
	})

	id, err := c.CreateExpense(context.Background(), ExpenseBody{
		Amount:      15.5,
		Description: "coffee",
		Date:        "2024-06-11",
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if id != "e9" {
		t.Fatalf("id = %q, want e9", id)
	}
}

func TestCreateExpense_MissingIDInResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ok"}`)
	})

	_, err := c.CreateExpense(context.Background(), ExpenseBody{Amount: 1, Description: "x", Date: "2024-06-11"})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("CreateExpense = %v, want ParseError", err)
	}
}

func TestCreateExpense_ServerErrorSurfacesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	_, err := c.CreateExpense(context.Background(), ExpenseBody{Amount: 1, Description: "x", Date: "2024-06-11"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("CreateExpense = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Body != "server error" {
		t.Errorf("StatusError = %d %q, want 500 with server body", se.StatusCode, se.Body)
	}
}

func TestUpdateExpense(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/expenses/e3" {
			t.Errorf("got %s %s, want PATCH /expenses/e3", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		verifySignature(t, r, body)
		_, _ = io.WriteString(w, `{"status": "Expense updated"}`)
	})

	err := c.UpdateExpense(context.Background(), "e3", ExpenseBody{
		Amount:      9.99,
		Description: "lunch",
		Date:        "2024-06-12",
	})
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
}

func TestDeleteExpense_SignedIDBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/expenses/e4" {
			t.Errorf("got %s %s, want DELETE /expenses/e4", r.Method, r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		verifySignature(t, r, body)

		var payload struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &payload); err != nil || payload.ID != "e4" {
			t.Errorf("delete body = %s, want {\"id\":\"e4\"}", body)
		}
		_, _ = io.WriteString(w, `{"status": "Expense deleted"}`)
	})

	if err := c.DeleteExpense(context.Background(), "e4"); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
}

func TestSetBudget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/budget" {
			t.Errorf("got %s %s, want PUT /budget", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		verifySignature(t, r, body)
		if string(body) != `{"weekly_budget":95}` {
			t.Errorf("body = %s", body)
		}
		_, _ = io.WriteString(w, `{"status": "Budget updated"}`)
	})

	if err := c.SetBudget(context.Background(), 95); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
}
