package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// JSON shapes of the API, as documented in spec/openapi.yaml.

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// DateRange is a stop's date range. Dates are YYYY-MM-DD.
type DateRange struct {
	Start openapi_types.Date `json:"start"`
	End   openapi_types.Date `json:"end"`
	Key   string             `json:"key"`
}

// Stop is one leg of the itinerary.
type Stop struct {
	ID          int       `json:"id"`
	Destination string    `json:"destination"`
	DateRange   DateRange `json:"date_range"`
	Nights      int       `json:"nights"`
	// Pending is true until an end date has been chosen.
	Pending bool `json:"pending"`
}

// Draft is the full editor state.
type Draft struct {
	ID         openapi_types.UUID `json:"id"`
	Stops      []Stop             `json:"stops"`
	OpenPicker *int               `json:"open_picker"`
	Activities []string           `json:"activities"`
	// CanAppend is false while the last stop has no end date.
	CanAppend bool `json:"can_append"`
	// CanRemove is false when only one stop is left.
	CanRemove bool      `json:"can_remove"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateRangeInput is a date-range selection. Start is ignored for every stop
// but the first.
type DateRangeInput struct {
	Start *openapi_types.Date `json:"start,omitempty"`
	End   *openapi_types.Date `json:"end"`
}

// UpdateStopRequest is the body of PATCH /drafts/{draftId}/stops/{stopId}.
type UpdateStopRequest struct {
	Destination *string         `json:"destination,omitempty"`
	DateRange   *DateRangeInput `json:"date_range,omitempty"`
}

// OpenPickerRequest is the body of PUT /drafts/{draftId}/picker.
type OpenPickerRequest struct {
	StopID *int `json:"stop_id"`
}

// Calendar is the body of GET /drafts/{draftId}/stops/{stopId}/calendar.
type Calendar struct {
	StopID      int                `json:"stop_id"`
	MinDate     openapi_types.Date `json:"min_date"`
	StartLocked bool               `json:"start_locked"`
}

// CatalogEntry is a preset destination or activity category.
type CatalogEntry struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// CatalogList is the body of GET /destinations and GET /activities.
type CatalogList struct {
	Data       []CatalogEntry `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// draftToResponse converts a domain.Draft to its JSON shape.
func draftToResponse(d domain.Draft) Draft {
	stops := make([]Stop, len(d.Itinerary.Stops))
	for i, st := range d.Itinerary.Stops {
		stops[i] = Stop{
			ID:          st.ID,
			Destination: st.Destination,
			DateRange: DateRange{
				Start: openapiDate(st.Dates.Start),
				End:   openapiDate(st.Dates.End),
				Key:   st.Dates.Key,
			},
			Nights:  st.Dates.Nights(),
			Pending: st.Dates.Pending(),
		}
	}

	var open *int
	if id, ok := d.Picker.OpenStop(); ok {
		open = &id
	}

	activities := d.Activities
	if activities == nil {
		activities = []string{}
	}

	return Draft{
		ID:         d.ID,
		Stops:      stops,
		OpenPicker: open,
		Activities: activities,
		CanAppend:  d.Itinerary.Len() > 0 && !d.Itinerary.Last().Dates.Pending(),
		CanRemove:  d.Itinerary.Len() > 1,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// requestToPatch converts an UpdateStopRequest to a domain.StopPatch.
// Missing dates are passed on as zero times and rejected by the domain.
func requestToPatch(req UpdateStopRequest) domain.StopPatch {
	p := domain.StopPatch{Destination: req.Destination}
	if req.DateRange != nil {
		var r domain.DateRange
		if req.DateRange.Start != nil {
			r.Start = req.DateRange.Start.Time
		}
		if req.DateRange.End != nil {
			r.End = req.DateRange.End.Time
		}
		p.Dates = &r
	}
	return p
}

func openapiDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}
