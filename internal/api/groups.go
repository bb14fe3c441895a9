package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *server) listGroups(w http.ResponseWriter, r *http.Request) {
	gs, err := s.Leads.ListGroups(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": gs})
}

func (s *server) createGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.Leads.CreateGroup(r.Context(), userID(r), body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.Leads.DeleteGroup(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) groupLeads(w http.ResponseWriter, r *http.Request) {
	ls, err := s.Leads.GroupLeads(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": ls})
}

func (s *server) addToGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.Leads.AddToGroup(r.Context(), userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "leadID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *server) removeFromGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.Leads.RemoveFromGroup(r.Context(), userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "leadID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
