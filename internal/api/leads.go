package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/pipeline"
	"github.com/sells-group/leadforge-cli/internal/verify"
)

func (s *server) listLeads(w http.ResponseWriter, r *http.Request) {
	ls, err := s.Leads.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if status := model.Status(r.URL.Query().Get("status")); status != "" {
		filtered := ls[:0]
		for _, l := range ls {
			if l.Status == status {
				filtered = append(filtered, l)
			}
		}
		ls = filtered
	}
	if r.URL.Query().Get("favorite") == "true" {
		filtered := ls[:0]
		for _, l := range ls {
			if l.IsFavorite {
				filtered = append(filtered, l)
			}
		}
		ls = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": ls})
}

func (s *server) createLead(w http.ResponseWriter, r *http.Request) {
	var draft model.Lead
	if err := decodeLoose(r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.Leads.CreateManual(r.Context(), userID(r), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *server) getLead(w http.ResponseWriter, r *http.Request) {
	l, err := s.Leads.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) deleteLead(w http.ResponseWriter, r *http.Request) {
	if err := s.Leads.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) generate(w http.ResponseWriter, r *http.Request) {
	if s.Generator == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var req pipeline.Request
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.Generator.Generate(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) importLeads(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Records []map[string]any `json:"records"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.Leads.Ingest(r.Context(), userID(r), body.Records, model.SourceImported)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) dedupe(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Leads.Dedupe(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) verifyLeads(w http.ResponseWriter, r *http.Request) {
	if s.Verifier == nil {
		writeError(w, r, errUnavailable)
		return
	}
	rep, err := verify.Run(r.Context(), s.Leads, s.Verifier, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) transition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.Status `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.Leads.Transition(r.Context(), userID(r), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	l, err := s.Leads.ToggleFavorite(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) setNotes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.Leads.SetNotes(r.Context(), userID(r), chi.URLParam(r, "id"), body.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// scheduleFollowUp takes {"at": RFC 3339 time} or {"at": null} to clear.
func (s *server) scheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		At *time.Time `json:"at"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.Leads.ScheduleFollowUp(r.Context(), userID(r), chi.URLParam(r, "id"), body.At)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) setTags(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.Leads.SetTags(r.Context(), userID(r), chi.URLParam(r, "id"), body.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// decodeLoose accepts unknown fields; lead bodies carry read-only fields
// like id and created_at when clients round-trip a lead.
func decodeLoose(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		return &badRequest{msg: "invalid request body: " + err.Error()}
	}
	return nil
}
