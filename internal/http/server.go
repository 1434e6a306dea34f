// Package http exposes the ledger as a JSON API. Handlers stay thin: they
// parse, call a service, map errors to status codes and write JSON.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"khata/internal/cache"
	"khata/internal/middleware/trace"
	"khata/internal/services"
)

// Services bundles the service layer the server dispatches to.
type Services struct {
	Organizations *services.OrganizationService
	Contacts      *services.ContactService
	Categories    *services.CategoryService
	Ledger        *services.LedgerService
	Reports       *services.ReportService
}

type Server struct {
	http.Server
	svc Services

	// Cached report responses, invalidated per organization on writes.
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer wires routes and the report cache, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc Services, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           trace.NewMiddleware().Middleware(mux),
			ReadHeaderTimeout: 5 * time.Second,
		},
		svc:          svc,
		reportCache:  cache.NewLRUCache[[]byte](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /organizations", s.handleCreateOrganization)
	mux.HandleFunc("GET /organizations", s.handleListOrganizations)
	mux.HandleFunc("GET /organizations/{id}", s.handleGetOrganization)
	mux.HandleFunc("PUT /organizations/{id}", s.handleUpdateOrganization)
	mux.HandleFunc("DELETE /organizations/{id}", s.handleDeleteOrganization)

	mux.HandleFunc("POST /organizations/{id}/contacts", s.handleCreateContact)
	mux.HandleFunc("GET /organizations/{id}/contacts", s.handleListContacts)
	mux.HandleFunc("GET /contacts/{id}", s.handleGetContact)
	mux.HandleFunc("PUT /contacts/{id}", s.handleUpdateContact)
	mux.HandleFunc("DELETE /contacts/{id}", s.handleDeleteContact)
	mux.HandleFunc("GET /contacts/{id}/balance", s.handleContactBalance)

	mux.HandleFunc("POST /organizations/{id}/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /organizations/{id}/categories", s.handleListCategories)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /transactions/givetake", s.handleCreateGiveTake)
	mux.HandleFunc("POST /transactions/expense", s.handleCreateExpense)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /contacts/{id}/transactions", s.handleListContactTransactions)

	mux.HandleFunc("GET /organizations/{id}/reports/balances", s.handleBalanceSummary)
	mux.HandleFunc("GET /contacts/{id}/statement", s.handleContactStatement)
	mux.HandleFunc("GET /organizations/{id}/reports/statement", s.handleOverallStatement)
	mux.HandleFunc("GET /organizations/{id}/reports/expenses", s.handleExpenseSummary)
	mux.HandleFunc("GET /organizations/{id}/reports/expenses/periodic", s.handlePeriodExpenseSummary)

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateOrg drops every cached report of the organization.
func (s *Server) invalidateOrg(orgID int64) {
	s.reportCache.DeletePrefix(cache.OrgPrefix(orgID))
}

// Shutdown stops the cache cleanup routine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
