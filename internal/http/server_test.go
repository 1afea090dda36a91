package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budget/internal/core"
	"budget/internal/nlq"
	"budget/internal/query"
)

type fakeService struct {
	transactions []core.Transaction
	categories   []core.CategoryWithSpent
	deleted      []string
	addErr       error
}

func (f *fakeService) AddTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if f.addErr != nil {
		return core.Transaction{}, f.addErr
	}
	t := core.Transaction{
		ID:          "tx-1",
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
	}
	f.transactions = append(f.transactions, t)
	return t, nil
}

func (f *fakeService) AddCategory(_ context.Context, in core.CategoryInput) (core.Category, error) {
	return core.Category{ID: "cat-1", Name: in.Name, Budget: in.Budget}, nil
}

func (f *fakeService) DeleteTransaction(_ context.Context, id string) error {
	f.deleted = append(f.deleted, "transaction:"+id)
	return nil
}

func (f *fakeService) DeleteCategory(_ context.Context, id string) error {
	f.deleted = append(f.deleted, "category:"+id)
	return nil
}

func (f *fakeService) ListTransactions(context.Context) ([]core.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeService) ListCategoriesWithSpent(context.Context) ([]core.CategoryWithSpent, error) {
	return f.categories, nil
}

func (f *fakeService) ImportReceiptItems(_ context.Context, items []core.ReceiptItem) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(items))
	for _, it := range items {
		out = append(out, core.Transaction{ID: "tx-" + it.Description, Description: it.Description, Amount: it.Amount})
	}
	return out, nil
}

type fakeExecutor struct {
	rows    []map[string]any
	queries []string
}

func (f *fakeExecutor) Query(_ context.Context, sql string) ([]map[string]any, error) {
	f.queries = append(f.queries, sql)
	return f.rows, nil
}

type fakeGenerator struct {
	query nlq.QueryRequest
	items []core.ReceiptItem
}

func (f *fakeGenerator) GenerateQuery(context.Context, string) (nlq.QueryRequest, error) {
	return f.query, nil
}

func (f *fakeGenerator) ExtractReceiptItems(context.Context, string) ([]core.ReceiptItem, error) {
	return f.items, nil
}

func newTestServer(svc *fakeService, exec *fakeExecutor, gen QueryGenerator) *Server {
	if exec == nil {
		exec = &fakeExecutor{}
	}
	return NewServer(":0", svc, query.NewGate(exec), gen)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateTransaction(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Lunch","amount":12.5,"category":"cat-1","date":"2025-03-01"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body)
	}
	var got core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Description != "Lunch" || got.Amount != 12.5 {
		t.Fatalf("unexpected transaction %+v", got)
	}
}

func TestCreateTransactionBadJSON(t *testing.T) {
	srv := newTestServer(&fakeService{}, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", `{"amount": nope}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateTransactionUnknownCategory(t *testing.T) {
	svc := &fakeService{addErr: &core.ReferenceError{Category: "ghost"}}
	srv := newTestServer(svc, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Lunch","amount":5,"category":"ghost"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "invalid or missing category" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestListCategoriesEmptyIsArray(t *testing.T) {
	srv := newTestServer(&fakeService{}, nil, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want empty array", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc, nil, nil)

	rec := doJSON(t, srv, http.MethodDelete, "/api/transactions/tx-9", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "transaction:tx-9" {
		t.Fatalf("deleted = %v", svc.deleted)
	}
}

func TestVoiceQueryExecutesReads(t *testing.T) {
	exec := &fakeExecutor{rows: []map[string]any{{"name": "Food", "value": 42.0}}}
	srv := newTestServer(&fakeService{}, exec, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/voice-query",
		`{"sql":"SELECT name FROM categories","visualization":"graph","graphType":"bar","description":"Spending by category"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body)
	}
	var got voiceQueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Results) != 1 || got.GraphType != "bar" || got.Description != "Spending by category" {
		t.Fatalf("unexpected response %+v", got)
	}
	if len(exec.queries) != 1 || exec.queries[0] != "SELECT name FROM categories" {
		t.Fatalf("executed queries = %v", exec.queries)
	}
}

func TestVoiceQueryRejectsMutations(t *testing.T) {
	exec := &fakeExecutor{}
	srv := newTestServer(&fakeService{}, exec, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/voice-query",
		`{"sql":"DELETE FROM transactions","visualization":"text"}`)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "only read queries are allowed" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.SQL != "DELETE FROM transactions" {
		t.Fatalf("sql = %q, want offending text echoed", body.SQL)
	}
	if len(exec.queries) != 0 {
		t.Fatalf("store saw %v, want no queries", exec.queries)
	}
}

func TestVoiceTranscriptWithoutModel(t *testing.T) {
	srv := newTestServer(&fakeService{}, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/voice-query/transcript", `{"text":"how much did I spend"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestVoiceTranscriptFullPath(t *testing.T) {
	exec := &fakeExecutor{rows: []map[string]any{{"total": 99.5}}}
	gen := &fakeGenerator{query: nlq.QueryRequest{
		SQL:           "SELECT SUM(amount) AS total FROM transactions",
		Visualization: "text",
		Description:   "Total spending",
	}}
	srv := newTestServer(&fakeService{}, exec, gen)

	rec := doJSON(t, srv, http.MethodPost, "/api/voice-query/transcript", `{"text":"total spending"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body)
	}
	var got voiceQueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.SQL != gen.query.SQL || len(got.Results) != 1 {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestImportReceiptItems(t *testing.T) {
	srv := newTestServer(&fakeService{}, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/receipts",
		`{"items":[{"description":"Milk","amount":2.5},{"description":"Bread","amount":1.8}]}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body)
	}
	var got []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("created %d transactions, want 2", len(got))
	}
}

func TestImportReceiptFromText(t *testing.T) {
	gen := &fakeGenerator{items: []core.ReceiptItem{{Description: "Eggs", Amount: 3.2}}}
	srv := newTestServer(&fakeService{}, nil, gen)

	rec := doJSON(t, srv, http.MethodPost, "/api/receipts", `{"text":"EGGS 3.20"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body)
	}
}

func TestImportReceiptEmpty(t *testing.T) {
	srv := newTestServer(&fakeService{}, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/receipts", `{"items":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(&fakeService{}, nil, nil)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
}
