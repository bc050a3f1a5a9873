package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler returns a chi router serving every API route of s.
// Middleware is applied by the caller.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/destinations", s.ListDestinations)
	r.Get("/activities", s.ListActivities)

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", s.CreateDraft)

		r.Route("/{draftId}", func(r chi.Router) {
			r.Get("/", s.GetDraft)
			r.Delete("/", s.DiscardDraft)

			r.Post("/stops", s.AppendStop)
			r.Patch("/stops/{stopId}", s.UpdateStop)
			r.Delete("/stops/{stopId}", s.RemoveStop)
			r.Get("/stops/{stopId}/calendar", s.GetCalendar)

			r.Put("/picker", s.OpenPicker)
			r.Delete("/picker", s.ClosePicker)

			r.Put("/activities/{slug}", s.SelectActivity)
			r.Delete("/activities/{slug}", s.DeselectActivity)
		})
	})

	return r
}
