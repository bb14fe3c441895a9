package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/leadforge-cli/internal/campaign"
	"github.com/sells-group/leadforge-cli/internal/leads"
	"github.com/sells-group/leadforge-cli/internal/model"
)

func (s *server) listCampaigns(w http.ResponseWriter, r *http.Request) {
	cs, err := s.Leads.ListCampaigns(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": cs})
}

func (s *server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var d leads.CampaignDraft
	if err := decode(r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.Leads.CreateCampaign(r.Context(), userID(r), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *server) getCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.Leads.GetCampaign(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) setCampaignStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.CampaignStatus `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.Leads.SetCampaignStatus(r.Context(), userID(r), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) sendCampaign(w http.ResponseWriter, r *http.Request) {
	if s.Sender == nil {
		writeError(w, r, errUnavailable)
		return
	}
	out, err := campaign.Launch(r.Context(), s.Leads, s.Sender, userID(r), chi.URLParam(r, "id"), s.From)
	switch {
	case err != nil && out == nil:
		writeError(w, r, err)
	case err != nil:
		// Interrupted send: report what went out alongside the error.
		status, msg := statusFor(err)
		logFailure(r, status, err)
		writeJSON(w, status, partialSend{Outcome: out, Error: msg})
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

type partialSend struct {
	*campaign.Outcome
	Error string `json:"error"`
}

// emailWebhook receives delivery events from the email provider. The
// provider echoes the X-User-ID message header back as a request header and
// the campaign and lead ids as body tags; a user_id tag is accepted when the
// header is absent. Replayed events answer 200 with duplicate=true so the
// provider stops retrying.
func (s *server) emailWebhook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID         string          `json:"id"`
		Type       model.EventKind `json:"type"`
		CreatedAt  *time.Time      `json:"created_at"`
		UserID     string          `json:"user_id"`
		CampaignID string          `json:"campaign_id"`
		LeadID     string          `json:"lead_id"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	ev := model.DeliveryEvent{
		ID:         body.ID,
		CampaignID: body.CampaignID,
		LeadID:     body.LeadID,
		Kind:       body.Type,
		At:         time.Now().UTC(),
	}
	if body.CreatedAt != nil {
		ev.At = body.CreatedAt.UTC()
	}
	uid := userID(r)
	if uid == "" {
		uid = body.UserID
	}
	counted, err := s.Leads.RecordEvent(r.Context(), uid, ev)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counted": counted, "duplicate": !counted})
}
