package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"khata/internal/core"
	"khata/internal/services"
	"khata/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := Services{
		Organizations: services.NewOrganizationService(repo),
		Contacts:      services.NewContactService(repo),
		Categories:    services.NewCategoryService(repo),
		Ledger:        services.NewLedgerService(repo, nil),
		Reports:       services.NewReportService(repo),
	}
	return NewServer(":0", svc, 100, time.Minute)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createOrg(t *testing.T, s *Server, name string) core.Organization {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/organizations", map[string]string{
		"name": name, "currency": "INR", "country": "India",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create organization: status %d body %s", rec.Code, rec.Body)
	}
	return decodeBody[core.Organization](t, rec)
}

func createContact(t *testing.T, s *Server, orgID int64, name, mobile string) core.Contact {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, fmt.Sprintf("/organizations/%d/contacts", orgID), map[string]string{
		"name": name, "mobile_number": mobile,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact: status %d body %s", rec.Code, rec.Body)
	}
	return decodeBody[core.Contact](t, rec)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOrganizationLifecycle(t *testing.T) {
	s := newTestServer(t)
	org := createOrg(t, s, "Sharma Traders")

	rec := doJSON(t, s, http.MethodPost, "/organizations", map[string]string{
		"name": "Sharma Traders", "currency": "INR", "country": "India",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate name expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/organizations/%d/categories", org.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list categories: status %d", rec.Code)
	}
	categories := decodeBody[[]core.ExpenseCategory](t, rec)
	if len(categories) != 9 {
		t.Fatalf("expected 9 seeded categories, got %d", len(categories))
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/organizations/%d", org.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/organizations/%d", org.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestGiveTakeFlow(t *testing.T) {
	s := newTestServer(t)
	org := createOrg(t, s, "Sharma Traders")
	contact := createContact(t, s, org.ID, "Ravi", "9876543210")

	rec := doJSON(t, s, http.MethodPost, "/transactions/givetake", map[string]any{
		"contact_id": contact.ID, "amount": "500", "direction": "GIVE", "notes": "loan",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("give: status %d body %s", rec.Code, rec.Body)
	}
	tx := decodeBody[core.Transaction](t, rec)

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/contacts/%d/balance", contact.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: status %d", rec.Code)
	}
	if balance := decodeBody[map[string]string](t, rec); balance["balance"] != "500" {
		t.Fatalf("expected balance 500, got %q", balance["balance"])
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/transactions/%d", tx.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete transaction: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/contacts/%d/balance", contact.ID), nil)
	if balance := decodeBody[map[string]string](t, rec); balance["balance"] != "0" {
		t.Fatalf("expected balance restored to 0, got %q", balance["balance"])
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	org := createOrg(t, s, "Sharma Traders")
	contact := createContact(t, s, org.ID, "Ravi", "9876543210")

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"invalid amount", http.MethodPost, "/transactions/givetake",
			map[string]any{"contact_id": contact.ID, "amount": "-5", "direction": "GIVE"},
			http.StatusBadRequest},
		{"invalid direction", http.MethodPost, "/transactions/givetake",
			map[string]any{"contact_id": contact.ID, "amount": "5", "direction": "LEND"},
			http.StatusBadRequest},
		{"unknown contact", http.MethodPost, "/transactions/givetake",
			map[string]any{"contact_id": int64(999), "amount": "5", "direction": "GIVE"},
			http.StatusNotFound},
		{"duplicate mobile", http.MethodPost, fmt.Sprintf("/organizations/%d/contacts", org.ID),
			map[string]string{"name": "Other", "mobile_number": "9876543210"},
			http.StatusConflict},
		{"bad id", http.MethodGet, "/transactions/abc", nil, http.StatusBadRequest},
		{"unknown transaction", http.MethodGet, "/transactions/999", nil, http.StatusNotFound},
		{"bad granularity", http.MethodGet,
			fmt.Sprintf("/organizations/%d/reports/expenses/periodic?granularity=hourly", org.ID),
			nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d body %s", tc.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestReportCacheInvalidation(t *testing.T) {
	s := newTestServer(t)
	org := createOrg(t, s, "Sharma Traders")
	contact := createContact(t, s, org.ID, "Ravi", "9876543210")

	path := fmt.Sprintf("/organizations/%d/reports/balances", org.ID)

	rec := doJSON(t, s, http.MethodGet, path, nil)
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("first read expected MISS, got %q", got)
	}
	rec = doJSON(t, s, http.MethodGet, path, nil)
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("second read expected HIT, got %q", got)
	}

	rec = doJSON(t, s, http.MethodPost, "/transactions/givetake", map[string]any{
		"contact_id": contact.ID, "amount": "100", "direction": "GIVE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("give: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, path, nil)
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("read after write expected MISS, got %q", got)
	}
	summary := decodeBody[map[string]string](t, rec)
	if summary["Ravi"] != "100" {
		t.Fatalf("expected fresh balance 100, got %q", summary["Ravi"])
	}
}

func TestExpenseViaAPI(t *testing.T) {
	s := newTestServer(t)
	org := createOrg(t, s, "Sharma Traders")
	contact := createContact(t, s, org.ID, "Ravi", "9876543210")

	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/organizations/%d/categories", org.ID), nil)
	categories := decodeBody[[]core.ExpenseCategory](t, rec)
	var rentID int64
	for _, c := range categories {
		if c.Name == "Rent" {
			rentID = c.ID
		}
	}
	if rentID == 0 {
		t.Fatal("Rent category not seeded")
	}

	rec = doJSON(t, s, http.MethodPost, "/transactions/expense", map[string]any{
		"contact_id": contact.ID, "category_id": rentID, "amount": "75.50",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense: status %d body %s", rec.Code, rec.Body)
	}

	// Expenses never move the balance.
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/contacts/%d/balance", contact.ID), nil)
	if balance := decodeBody[map[string]string](t, rec); balance["balance"] != "0" {
		t.Fatalf("expense moved balance: %q", balance["balance"])
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/organizations/%d/reports/expenses", org.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expense summary: status %d", rec.Code)
	}
	summary := decodeBody[core.ExpenseSummary](t, rec)
	if summary.TotalExpenses.String() != "75.5" {
		t.Fatalf("expected total 75.5, got %s", summary.TotalExpenses)
	}
}
