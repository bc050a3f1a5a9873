package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CreateDraft handles POST /drafts.
func (s *Server) CreateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Create(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/drafts/"+d.ID.String())
	writeJSON(w, http.StatusCreated, draftToResponse(d))
}

// GetDraft handles GET /drafts/{draftId}.
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	d, err := s.drafts.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToResponse(d))
}

// DiscardDraft handles DELETE /drafts/{draftId}.
func (s *Server) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.drafts.Discard(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendStop handles POST /drafts/{draftId}/stops.
// Returns 422 end_date_required while the last stop has no end date.
func (s *Server) AppendStop(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	d, err := s.drafts.AppendStop(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draftToResponse(d))
}

// UpdateStop handles PATCH /drafts/{draftId}/stops/{stopId}.
func (s *Server) UpdateStop(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	stopID, err := stopIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req UpdateStopRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := s.drafts.UpdateStop(r.Context(), id, stopID, requestToPatch(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToResponse(d))
}

// RemoveStop handles DELETE /drafts/{draftId}/stops/{stopId}.
// Unlike the other deletes it answers 200 with the updated draft, since the
// remaining stops may have been re-chained.
func (s *Server) RemoveStop(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	stopID, err := stopIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	d, err := s.drafts.RemoveStop(r.Context(), id, stopID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToResponse(d))
}

// GetCalendar handles GET /drafts/{draftId}/stops/{stopId}/calendar.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	stopID, err := stopIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := s.drafts.Calendar(r.Context(), id, stopID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Calendar{
		StopID:      c.StopID,
		MinDate:     openapiDate(c.MinDate),
		StartLocked: c.StartLocked,
	})
}

// OpenPicker handles PUT /drafts/{draftId}/picker.
// At most one stop has its picker open; opening another one closes the first.
func (s *Server) OpenPicker(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req OpenPickerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.StopID == nil {
		badRequest(w, "stop_id is required")
		return
	}
	d, err := s.drafts.OpenPicker(r.Context(), id, *req.StopID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToResponse(d))
}

// ClosePicker handles DELETE /drafts/{draftId}/picker. Closing an already
// closed picker succeeds.
func (s *Server) ClosePicker(w http.ResponseWriter, r *http.Request) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	d, err := s.drafts.ClosePicker(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToResponse(d))
}

// SelectActivity handles PUT /drafts/{draftId}/activities/{slug}.
func (s *Server) SelectActivity(w http.ResponseWriter, r *http.Request) {
	s.toggleActivity(w, r, s.drafts.SelectActivity)
}

// DeselectActivity handles DELETE /drafts/{draftId}/activities/{slug}.
func (s *Server) DeselectActivity(w http.ResponseWriter, r *http.Request) {
	s.toggleActivity(w, r, s.drafts.DeselectActivity)
}

func (s *Server) toggleActivity(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID, slug string) (domain.Draft, error)) {
	id, err := draftIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var slug string
	if err := bindPath(r, "slug", &slug); err != nil {
		badRequest(w, err.Error())
		return
	}
	d, err := op(r.Context(), id, slug)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToResponse(d))
}
