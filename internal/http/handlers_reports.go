package http

import (
	"encoding/json"
	"net/http"

	"khata/internal/cache"
)

// serveCachedReport writes a cached report body, or generates it, caches
// and writes it.
func (s *Server) serveCachedReport(w http.ResponseWriter, r *http.Request, key string, generate func() (any, error)) {
	if body, ok := s.reportCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	report, err := generate()
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.reportCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleBalanceSummary(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := cache.ReportKey(orgID, "balances")
	s.serveCachedReport(w, r, key, func() (any, error) {
		return s.svc.Reports.ContactBalanceSummary(r.Context(), orgID)
	})
}

func (s *Server) handleContactStatement(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Statement lookups resolve the organization through the contact, so
	// they bypass the per-org cache rather than reimplement the lookup.
	stmt, err := s.svc.Reports.ContactStatement(r.Context(), contactID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

func (s *Server) handleOverallStatement(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := cache.ReportKey(orgID, "statement",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	s.serveCachedReport(w, r, key, func() (any, error) {
		return s.svc.Reports.OverallStatement(r.Context(), orgID, start, end)
	})
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := cache.ReportKey(orgID, "expenses",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	s.serveCachedReport(w, r, key, func() (any, error) {
		return s.svc.Reports.ExpenseSummary(r.Context(), orgID, start, end)
	})
}

func (s *Server) handlePeriodExpenseSummary(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	granularity := r.URL.Query().Get("granularity")

	key := cache.ReportKey(orgID, "expenses-periodic", granularity,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	s.serveCachedReport(w, r, key, func() (any, error) {
		return s.svc.Reports.PeriodExpenseSummary(r.Context(), orgID, start, end, granularity)
	})
}
