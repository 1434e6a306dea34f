package http

import (
	"net/http"

	"khata/internal/core"
)

type giveTakeRequest struct {
	ContactID int64  `json:"contact_id"`
	Amount    string `json:"amount"`
	Direction string `json:"direction"`
	Notes     string `json:"notes"`
}

func (s *Server) handleCreateGiveTake(w http.ResponseWriter, r *http.Request) {
	var req giveTakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	direction, err := core.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Ledger.CreateGiveTake(r.Context(), req.ContactID, amount, direction, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateContactOrg(r, tx.ContactID)
	writeJSON(w, http.StatusCreated, tx)
}

type expenseRequest struct {
	ContactID  int64  `json:"contact_id"`
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Notes      string `json:"notes"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Ledger.CreateExpense(r.Context(), req.ContactID, req.CategoryID, amount, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateContactOrg(r, tx.ContactID)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.svc.Ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.svc.Ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateContactOrg(r, tx.ContactID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListContactTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svc.Ledger.ListTransactionsByContact(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// invalidateContactOrg drops cached reports of the contact's organization
// after a ledger write.
func (s *Server) invalidateContactOrg(r *http.Request, contactID int64) {
	contact, err := s.svc.Contacts.Get(r.Context(), contactID)
	if err != nil {
		return
	}
	s.invalidateOrg(contact.OrganizationID)
}
