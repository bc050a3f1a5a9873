package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Draft is the server-held state of one open planning view: the itinerary
// being edited, which calendar is open, and the selected activities.
// A draft is created when the view loads and dropped when the user leaves it
// or it sits idle past its TTL. Drafts are never persisted.
type Draft struct {
	ID         uuid.UUID
	Itinerary  Itinerary
	Picker     Picker
	Activities []string // activity slugs, sorted
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDraft returns a draft with the default single-stop itinerary.
func NewDraft(id uuid.UUID, now, today time.Time) Draft {
	return Draft{
		ID:         id,
		Itinerary:  NewItinerary(today),
		Activities: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithItinerary replaces the itinerary and drops a picker that points at a
// stop which no longer exists.
func (d Draft) WithItinerary(it Itinerary) Draft {
	d.Itinerary = it
	if id, ok := d.Picker.OpenStop(); ok {
		if _, err := it.Stop(id); err != nil {
			d.Picker = d.Picker.Close()
		}
	}
	return d
}

// OpenPicker opens the calendar for a stop, closing any other.
func (d Draft) OpenPicker(stopID int) (Draft, error) {
	if _, err := d.Itinerary.Stop(stopID); err != nil {
		return d, err
	}
	d.Picker = d.Picker.Open(stopID)
	return d, nil
}

// SelectActivity adds slug to the selected activities. Selecting an
// already-selected activity is a no-op.
func (d Draft) SelectActivity(slug string) Draft {
	i, found := slices.BinarySearch(d.Activities, slug)
	if found {
		return d
	}
	d.Activities = slices.Insert(slices.Clone(d.Activities), i, slug)
	return d
}

// DeselectActivity removes slug from the selected activities.
// Returns ErrNotFound if it was not selected.
func (d Draft) DeselectActivity(slug string) (Draft, error) {
	i, found := slices.BinarySearch(d.Activities, slug)
	if !found {
		return d, fmt.Errorf("%w: %q", ErrActivityNotSelected, slug)
	}
	d.Activities = slices.Delete(slices.Clone(d.Activities), i, i+1)
	return d, nil
}
