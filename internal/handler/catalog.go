package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// ListDestinations handles GET /destinations?q=&page=&limit=.
// q filters by case-insensitive name prefix; an empty q lists everything.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	p := domain.NewPaginationParams(params.Page, params.Limit)
	items, total, err := s.catalog.ListDestinations(r.Context(), deref(params.Q), p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	data := make([]CatalogEntry, len(items))
	for i, d := range items {
		data[i] = CatalogEntry{Slug: d.Slug, Name: d.Name}
	}
	writeJSON(w, http.StatusOK, catalogList(data, p, total))
}

// ListActivities handles GET /activities?q=&page=&limit=.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	p := domain.NewPaginationParams(params.Page, params.Limit)
	items, total, err := s.catalog.ListActivities(r.Context(), deref(params.Q), p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	data := make([]CatalogEntry, len(items))
	for i, a := range items {
		data[i] = CatalogEntry{Slug: a.Slug, Name: a.Name}
	}
	writeJSON(w, http.StatusOK, catalogList(data, p, total))
}

func catalogList(data []CatalogEntry, p domain.PaginationParams, total int64) CatalogList {
	return CatalogList{
		Data:       data,
		Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: int(total)},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
