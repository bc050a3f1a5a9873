// Package handler implements the HTTP handlers of the trip planner API.
// All handlers are methods on Server. They are split into files by resource
// (health.go, draft.go, catalog.go) and wired to paths in routes.go.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// DraftServicer defines the editor operations the draft handlers depend on.
// It is declared here, in the consumer package, so handler tests can inject
// a mock without the service or repo layers.
type DraftServicer interface {
	Create(ctx context.Context) (domain.Draft, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Draft, error)
	Discard(ctx context.Context, id uuid.UUID) error
	AppendStop(ctx context.Context, id uuid.UUID) (domain.Draft, error)
	UpdateStop(ctx context.Context, id uuid.UUID, stopID int, patch domain.StopPatch) (domain.Draft, error)
	RemoveStop(ctx context.Context, id uuid.UUID, stopID int) (domain.Draft, error)
	OpenPicker(ctx context.Context, id uuid.UUID, stopID int) (domain.Draft, error)
	ClosePicker(ctx context.Context, id uuid.UUID) (domain.Draft, error)
	Calendar(ctx context.Context, id uuid.UUID, stopID int) (domain.CalendarBounds, error)
	SelectActivity(ctx context.Context, id uuid.UUID, slug string) (domain.Draft, error)
	DeselectActivity(ctx context.Context, id uuid.UUID, slug string) (domain.Draft, error)
}

// CatalogServicer defines the catalog reads the catalog handlers depend on.
type CatalogServicer interface {
	ListDestinations(ctx context.Context, q string, p domain.PaginationParams) ([]domain.Destination, int64, error)
	ListActivities(ctx context.Context, q string, p domain.PaginationParams) ([]domain.Activity, int64, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	drafts  DraftServicer
	catalog CatalogServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(drafts DraftServicer, catalog CatalogServicer) *Server {
	return &Server{drafts: drafts, catalog: catalog, log: slog.Default()}
}

// WithLogger sets the logger used for unexpected errors.
func (s *Server) WithLogger(log *slog.Logger) *Server {
	s.log = log
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}
