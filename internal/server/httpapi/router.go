package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/mailvault/internal/logging"
	"github.com/go-chi/chi/v5"
)

// Options configure router assembly.
type Options struct {
	Logger logging.Logger
	// BasePath mounts the API under a prefix, e.g. "/api". Empty means root.
	BasePath string
}

// NewRouter wires middleware and routes into an http.Handler.
//
// Auth endpoints are public except logout; configuration endpoints all sit
// behind bearer authentication.
func NewRouter(h *Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	root.Use(
		Recover(opts.Logger),
		Logging(opts.Logger),
	)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

func registerRoutes(r chi.Router, h *Handlers) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.With(Authenticate(h.tokens)).Post("/logout", h.Logout)
	})

	r.Route("/configurations", func(r chi.Router) {
		r.Use(Authenticate(h.tokens))
		r.Get("/", h.ListConfigurations)
		r.Post("/", h.CreateConfiguration)
		r.Get("/{id}", h.GetConfiguration)
		r.Put("/{id}", h.UpdateConfiguration)
		r.Post("/{id}/activate", h.ActivateConfiguration)
		r.Delete("/{id}", h.DeleteConfiguration)
	})
}
