// Package service contains the business logic of the trip planner API.
// Services apply domain rules, orchestrate repo calls, and report what
// happened to the event publisher and metrics. No storage code lives here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/events"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// DraftEvents publishes draft change notifications.
type DraftEvents interface {
	PublishDraft(event string, d domain.Draft) error
}

// DraftMetrics receives draft operation outcomes.
type DraftMetrics interface {
	ObserveDraftOp(op string, err error)
	SetActiveDrafts(n int)
	DraftsExpiredAdd(n int)
}

// DraftOptions configures a DraftService. Zero values select the defaults
// noted on each field.
type DraftOptions struct {
	// Cascade selects how date edits propagate. Default domain.CascadeNext.
	Cascade domain.CascadeMode
	// Location is the time zone that decides what "today" is. Default UTC.
	Location *time.Location
	// Now is the clock. Default time.Now.
	Now func() time.Time
	// Events, Metrics, and Logger are optional.
	Events  DraftEvents
	Metrics DraftMetrics
	Logger  *slog.Logger
}

// DraftService implements the itinerary editor on top of a DraftRepo.
type DraftService struct {
	drafts  repo.DraftRepo
	catalog repo.CatalogRepo
	cascade domain.CascadeMode
	loc     *time.Location
	now     func() time.Time
	events  DraftEvents
	metrics DraftMetrics
	log     *slog.Logger
}

// NewDraftService constructs a DraftService. catalog is used to validate
// activity selections.
func NewDraftService(drafts repo.DraftRepo, catalog repo.CatalogRepo, opts DraftOptions) *DraftService {
	s := &DraftService{
		drafts:  drafts,
		catalog: catalog,
		cascade: opts.Cascade,
		loc:     opts.Location,
		now:     opts.Now,
		events:  opts.Events,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}
	if s.cascade == "" {
		s.cascade = domain.CascadeNext
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Create starts a new draft with the default single-stop itinerary.
func (s *DraftService) Create(ctx context.Context) (domain.Draft, error) {
	now := s.now()
	d, err := s.drafts.Create(ctx, domain.NewDraft(uuid.New(), now.UTC(), domain.Day(now.In(s.loc))))
	s.metrics.ObserveDraftOp("create", err)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.Create: %w", err)
	}
	s.refreshActive(ctx)
	s.publish(events.DraftCreated, d)
	return d, nil
}

// GetByID returns a draft.
// Returns domain.ErrNotFound if the draft does not exist or has expired.
func (s *DraftService) GetByID(ctx context.Context, id uuid.UUID) (domain.Draft, error) {
	d, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.GetByID: %w", err)
	}
	return d, nil
}

// Discard drops a draft, e.g. when the user navigates away from the view.
func (s *DraftService) Discard(ctx context.Context, id uuid.UUID) error {
	d, err := s.drafts.GetByID(ctx, id)
	if err == nil {
		err = s.drafts.Delete(ctx, id)
	}
	s.metrics.ObserveDraftOp("discard", err)
	if err != nil {
		return fmt.Errorf("service.DraftService.Discard: %w", err)
	}
	s.refreshActive(ctx)
	s.publish(events.DraftDiscarded, d)
	return nil
}

// AppendStop adds an empty stop after the last one.
// Returns domain.ErrEndDateRequired if the last stop has no end date yet.
func (s *DraftService) AppendStop(ctx context.Context, id uuid.UUID) (domain.Draft, error) {
	d, err := s.mutate(ctx, "append_stop", id, func(d domain.Draft) (domain.Draft, error) {
		it, err := d.Itinerary.Append()
		if err != nil {
			return d, err
		}
		return d.WithItinerary(it), nil
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.AppendStop: %w", err)
	}
	s.publish(events.StopAppended, d)
	return d, nil
}

// UpdateStop applies a destination and/or date-range change to a stop and
// cascades the date change to later stops.
// Returns domain.ErrValidation for rejected input, domain.ErrNotFound for an
// unknown draft or stop.
func (s *DraftService) UpdateStop(ctx context.Context, id uuid.UUID, stopID int, patch domain.StopPatch) (domain.Draft, error) {
	today := s.today()
	d, err := s.mutate(ctx, "update_stop", id, func(d domain.Draft) (domain.Draft, error) {
		it, err := d.Itinerary.Apply(stopID, patch, today, s.cascade)
		if err != nil {
			return d, err
		}
		return d.WithItinerary(it), nil
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.UpdateStop: %w", err)
	}
	s.publish(events.StopUpdated, d)
	return d, nil
}

// RemoveStop deletes a stop.
// Returns domain.ErrLastStop if it is the only stop left.
func (s *DraftService) RemoveStop(ctx context.Context, id uuid.UUID, stopID int) (domain.Draft, error) {
	d, err := s.mutate(ctx, "remove_stop", id, func(d domain.Draft) (domain.Draft, error) {
		it, err := d.Itinerary.Remove(stopID, s.cascade)
		if err != nil {
			return d, err
		}
		return d.WithItinerary(it), nil
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.RemoveStop: %w", err)
	}
	s.publish(events.StopRemoved, d)
	return d, nil
}

// OpenPicker opens the calendar of a stop, closing any other open calendar.
func (s *DraftService) OpenPicker(ctx context.Context, id uuid.UUID, stopID int) (domain.Draft, error) {
	d, err := s.mutate(ctx, "open_picker", id, func(d domain.Draft) (domain.Draft, error) {
		return d.OpenPicker(stopID)
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.OpenPicker: %w", err)
	}
	return d, nil
}

// ClosePicker closes whichever calendar is open. Closing when none is open
// is not an error.
func (s *DraftService) ClosePicker(ctx context.Context, id uuid.UUID) (domain.Draft, error) {
	d, err := s.mutate(ctx, "close_picker", id, func(d domain.Draft) (domain.Draft, error) {
		d.Picker = d.Picker.Close()
		return d, nil
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.ClosePicker: %w", err)
	}
	return d, nil
}

// Calendar returns the calendar bounds for a stop, evaluated against today.
func (s *DraftService) Calendar(ctx context.Context, id uuid.UUID, stopID int) (domain.CalendarBounds, error) {
	d, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return domain.CalendarBounds{}, fmt.Errorf("service.DraftService.Calendar: %w", err)
	}
	b, err := d.Itinerary.Calendar(stopID, s.today())
	if err != nil {
		return domain.CalendarBounds{}, fmt.Errorf("service.DraftService.Calendar: %w", err)
	}
	return b, nil
}

// SelectActivity adds a catalog activity to the draft.
// Returns domain.ErrValidation if the slug is not in the catalog.
func (s *DraftService) SelectActivity(ctx context.Context, id uuid.UUID, slug string) (domain.Draft, error) {
	if _, err := s.catalog.GetActivity(ctx, slug); err != nil {
		if isNotFound(err) {
			err = fmt.Errorf("%w: unknown activity %q", domain.ErrValidation, slug)
		}
		s.metrics.ObserveDraftOp("select_activity", err)
		return domain.Draft{}, fmt.Errorf("service.DraftService.SelectActivity: %w", err)
	}
	d, err := s.mutate(ctx, "select_activity", id, func(d domain.Draft) (domain.Draft, error) {
		return d.SelectActivity(slug), nil
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.SelectActivity: %w", err)
	}
	return d, nil
}

// DeselectActivity removes an activity from the draft.
// Returns domain.ErrNotFound if it was not selected.
func (s *DraftService) DeselectActivity(ctx context.Context, id uuid.UUID, slug string) (domain.Draft, error) {
	d, err := s.mutate(ctx, "deselect_activity", id, func(d domain.Draft) (domain.Draft, error) {
		return d.DeselectActivity(slug)
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("service.DraftService.DeselectActivity: %w", err)
	}
	return d, nil
}

// SweepExpired drops drafts idle for longer than ttl and returns how many
// were dropped.
func (s *DraftService) SweepExpired(ctx context.Context, ttl time.Duration) (int, error) {
	n, err := s.drafts.DeleteIdleSince(ctx, s.now().UTC().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("service.DraftService.SweepExpired: %w", err)
	}
	if n > 0 {
		s.metrics.DraftsExpiredAdd(n)
		s.log.InfoContext(ctx, "expired idle drafts", "count", n, "ttl", ttl.String())
	}
	s.refreshActive(ctx)
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is cancelled.
func (s *DraftService) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx, ttl); err != nil {
				s.log.ErrorContext(ctx, "draft sweep failed", "error", err)
			}
		}
	}
}

// mutate applies fn to the stored draft atomically, stamps UpdatedAt, and
// records the outcome under op.
func (s *DraftService) mutate(ctx context.Context, op string, id uuid.UUID, fn func(domain.Draft) (domain.Draft, error)) (domain.Draft, error) {
	d, err := s.drafts.Update(ctx, id, func(cur domain.Draft) (domain.Draft, error) {
		next, err := fn(cur)
		if err != nil {
			return cur, err
		}
		next.UpdatedAt = s.now().UTC()
		return next, nil
	})
	s.metrics.ObserveDraftOp(op, err)
	return d, err
}

// today is the current calendar date in the configured location.
func (s *DraftService) today() time.Time {
	return domain.Day(s.now().In(s.loc))
}

// publish sends an event if a publisher is configured. Publish failures are
// logged and never fail the request.
func (s *DraftService) publish(event string, d domain.Draft) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishDraft(event, d); err != nil {
		s.log.Warn("draft event not published", "event", event, "draft_id", d.ID, "error", err)
	}
}

func (s *DraftService) refreshActive(ctx context.Context) {
	if n, err := s.drafts.Count(ctx); err == nil {
		s.metrics.SetActiveDrafts(n)
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveDraftOp(string, error) {}
func (noopMetrics) SetActiveDrafts(int)          {}
func (noopMetrics) DraftsExpiredAdd(int)         {}
