// Package api serves the lead service over HTTP. The caller's identity is
// taken from the X-User-ID header set by the identity gateway in front of
// the service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/leadforge-cli/internal/campaign"
	"github.com/sells-group/leadforge-cli/internal/leads"
	"github.com/sells-group/leadforge-cli/internal/pipeline"
	"github.com/sells-group/leadforge-cli/internal/verify"
)

// UserHeader carries the authenticated user id.
const UserHeader = "X-User-ID"

// Generator runs lead generation. *pipeline.Pipeline satisfies it.
type Generator interface {
	Generate(ctx context.Context, userID string, req pipeline.Request) (*pipeline.Report, error)
}

// Deps are the collaborators behind the routes. Generator, Sender and
// Verifier may be nil; their routes then answer 503.
type Deps struct {
	Leads          *leads.Service
	Generator      Generator
	Sender         *campaign.Sender
	Verifier       *verify.Verifier
	From           campaign.From
	AllowedOrigins []string
	// RequestTimeout bounds every request. Default 2m, long enough for a
	// generation call.
	RequestTimeout time.Duration
}

type server struct {
	Deps
}

// NewRouter returns the HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 2 * time.Minute
	}
	if len(d.AllowedOrigins) == 0 {
		d.AllowedOrigins = []string{"*"}
	}
	s := &server{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", UserHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(d.RequestTimeout))

	r.Get("/health", s.health)

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", s.listLeads)
		r.Post("/", s.createLead)
		r.Post("/generate", s.generate)
		r.Post("/import", s.importLeads)
		r.Post("/dedupe", s.dedupe)
		r.Post("/verify", s.verifyLeads)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getLead)
			r.Delete("/", s.deleteLead)
			r.Post("/status", s.transition)
			r.Post("/favorite", s.toggleFavorite)
			r.Put("/notes", s.setNotes)
			r.Put("/follow-up", s.scheduleFollowUp)
			r.Put("/tags", s.setTags)
		})
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.listGroups)
		r.Post("/", s.createGroup)
		r.Delete("/{id}", s.deleteGroup)
		r.Get("/{id}/leads", s.groupLeads)
		r.Post("/{id}/leads/{leadID}", s.addToGroup)
		r.Delete("/{id}/leads/{leadID}", s.removeFromGroup)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", s.listCampaigns)
		r.Post("/", s.createCampaign)
		r.Get("/{id}", s.getCampaign)
		r.Put("/{id}/status", s.setCampaignStatus)
		r.Post("/{id}/send", s.sendCampaign)
	})

	r.Post("/webhooks/email", s.emailWebhook)
	return r
}

func userID(r *http.Request) string {
	return r.Header.Get(UserHeader)
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
