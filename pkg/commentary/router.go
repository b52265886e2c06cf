package commentary

import (
	"github.com/go-chi/chi/v5"

	"github.com/lampstand/commentary/pkg/identity"
)

// NewRouter creates a chi router with the commentary API routes.
// extractor resolves the caller; pass nil for the default header-based
// extractor.
func NewRouter(svc *LifecycleService, resolver *Resolver, extractor identity.CallerExtractor) chi.Router {
	r := chi.NewRouter()
	r.Use(identity.Middleware(extractor))

	r.Get("/resolve", resolveHandler(resolver))

	r.Route("/entries", func(r chi.Router) {
		r.Post("/", createEntryHandler(svc))
		r.Get("/mine", listMineHandler(svc))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getEntryHandler(svc))
			r.Patch("/", updateEntryHandler(svc))
			r.Post("/transition", transitionHandler(svc))
			r.Get("/history", historyHandler(svc))
		})
	})

	r.With(identity.RequireRole(identity.RoleAdmin)).
		Get("/review-queue", reviewQueueHandler(svc))

	return r
}
