package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mindful-journal/journal-backend/internal/handlers"
	"github.com/mindful-journal/journal-backend/internal/middleware"
	"github.com/mindful-journal/journal-backend/internal/services"
)

// Deps is everything the router needs. Static may be nil.
type Deps struct {
	Auth       *handlers.AuthHandler
	Journals   *handlers.JournalHandler
	Analytics  *handlers.AnalyticsHandler
	Static     *handlers.Static
	Sessions   middleware.Authenticator
	CookieName string
	Log        logrus.FieldLogger

	// Extra runs after the common middleware (CORS, production security).
	Extra []func(http.Handler) http.Handler
}

func New(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	for _, mw := range d.Extra {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	requireAuth := middleware.RequireAuth(d.Sessions, d.CookieName, services.ErrUnauthenticated, d.Log)

	// Authentication routes
	r.Post("/api/register", d.Auth.Register)
	r.Post("/api/login", d.Auth.Login)
	r.Post("/api/logout", d.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		// Journaling routes
		r.Get("/api/journals", d.Journals.GetJournals)
		r.Post("/api/journals", d.Journals.CreateJournal)
		r.Get("/api/journals/{id}", d.Journals.GetJournal)
		r.Put("/api/journals/{id}", d.Journals.UpdateJournal)
		r.Delete("/api/journals/{id}", d.Journals.DeleteJournal)

		// Analytics routes
		r.Get("/api/analytics", d.Analytics.GetAnalytics)

		if d.Static != nil {
			r.Get("/dashboard", d.Static.Dashboard)
		}
	})

	if d.Static != nil {
		r.Get("/*", d.Static.Files)
	}

	return r
}
