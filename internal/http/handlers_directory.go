package http

import (
	"net/http"

	"khata/internal/core"
)

type organizationRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Country  string `json:"country"`
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.svc.Organizations.Create(r.Context(), core.Organization{
		Name:     req.Name,
		Currency: req.Currency,
		Country:  req.Country,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.svc.Organizations.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	org, err := s.svc.Organizations.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req organizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.svc.Organizations.Update(r.Context(), core.Organization{
		ID:       id,
		Name:     req.Name,
		Currency: req.Currency,
		Country:  req.Country,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svc.Organizations.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Organizations.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(id)
	w.WriteHeader(http.StatusNoContent)
}

type contactRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	contact, err := s.svc.Contacts.Create(r.Context(), core.Contact{
		OrganizationID: orgID,
		Name:           req.Name,
		MobileNumber:   req.MobileNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(orgID)
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	contacts, err := s.svc.Contacts.ListByOrganization(r.Context(), orgID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	contact, err := s.svc.Contacts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	contact, err := s.svc.Contacts.Update(r.Context(), core.Contact{
		ID:           id,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(contact.OrganizationID)
	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	contact, err := s.svc.Contacts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Contacts.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(contact.OrganizationID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContactBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.Contacts.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.String()})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.svc.Categories.Create(r.Context(), core.ExpenseCategory{
		OrganizationID: orgID,
		Name:           req.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(orgID)
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := s.svc.Categories.ListByOrganization(r.Context(), orgID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.svc.Categories.Update(r.Context(), core.ExpenseCategory{
		ID:   id,
		Name: req.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(category.OrganizationID)
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.svc.Categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOrg(category.OrganizationID)
	w.WriteHeader(http.StatusNoContent)
}
