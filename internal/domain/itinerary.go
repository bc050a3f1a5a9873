// Package domain contains the core types and rules of the trip planner.
// Itinerary operations are pure: each one returns a new value and never
// mutates the receiver, so callers can hold on to previous snapshots.
package domain

import (
	"fmt"
	"time"
)

// SelectionKey is the fixed key carried by every date range. Calendar widgets
// that support several ranges use it to identify "the selection".
const SelectionKey = "selection"

// CascadeMode controls how a date-range edit propagates to later stops.
type CascadeMode string

const (
	// CascadeNext resets only the immediate successor to a zero-length range
	// at the new boundary. Stops further downstream are left untouched.
	CascadeNext CascadeMode = "next"

	// CascadeFull re-chains every downstream stop: each start is forced to the
	// previous end, and an end that would fall before its new start collapses
	// onto it. Removing a stop re-chains the remainder the same way.
	CascadeFull CascadeMode = "full"
)

// ParseCascadeMode converts a config string into a CascadeMode.
// An empty string selects CascadeNext.
func ParseCascadeMode(s string) (CascadeMode, error) {
	switch CascadeMode(s) {
	case "", CascadeNext:
		return CascadeNext, nil
	case CascadeFull:
		return CascadeFull, nil
	}
	return "", fmt.Errorf("unknown cascade mode %q (want %q or %q)", s, CascadeNext, CascadeFull)
}

// Day returns the calendar date of t as midnight UTC.
// The year, month, and day are read in t's own location, so a local "today"
// and a date parsed from "2006-01-02" compare as equal days.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
	Key   string
}

// NewDateRange builds a DateRange with both ends normalized to midnight.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end), Key: SelectionKey}
}

// Pending reports whether the range has zero length, i.e. the user has not
// picked an end date yet.
func (r DateRange) Pending() bool {
	return r.Start.Equal(r.End)
}

// Nights returns the number of nights between Start and End.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Stop is one leg of a trip.
type Stop struct {
	ID          int
	Destination string
	Dates       DateRange
}

// StopPatch carries the fields of an update-stop request. Nil fields are left
// unchanged. A zero Dates.Start means the caller did not supply one.
type StopPatch struct {
	Destination *string
	Dates       *DateRange
}

// Itinerary is the ordered list of stops of a trip. It is never empty.
type Itinerary struct {
	Stops []Stop
}

// NewItinerary returns an itinerary holding the single default stop:
// id 1, no destination, starting and ending today.
func NewItinerary(today time.Time) Itinerary {
	return Itinerary{Stops: []Stop{{ID: 1, Dates: NewDateRange(today, today)}}}
}

// Len returns the number of stops.
func (it Itinerary) Len() int { return len(it.Stops) }

// Last returns the final stop.
func (it Itinerary) Last() Stop { return it.Stops[len(it.Stops)-1] }

// Stop returns the stop with the given id.
func (it Itinerary) Stop(id int) (Stop, error) {
	i, err := it.indexOf(id)
	if err != nil {
		return Stop{}, err
	}
	return it.Stops[i], nil
}

// Append adds an empty stop after the last one. The new stop starts and ends
// where the last stop ends. Returns ErrEndDateRequired, leaving the itinerary
// unchanged, when the last stop has no end date yet.
func (it Itinerary) Append() (Itinerary, error) {
	last := it.Last()
	if last.Dates.Pending() {
		return it, ErrEndDateRequired
	}
	out := it.clone()
	out.Stops = append(out.Stops, Stop{
		ID:    last.ID + 1,
		Dates: NewDateRange(last.Dates.End, last.Dates.End),
	})
	return out, nil
}

// SetDestination replaces a stop's destination verbatim. Empty is allowed.
func (it Itinerary) SetDestination(id int, destination string) (Itinerary, error) {
	i, err := it.indexOf(id)
	if err != nil {
		return it, err
	}
	out := it.clone()
	out.Stops[i].Destination = destination
	return out, nil
}

// SetDateRange applies a date-range selection to a stop.
//
// The first stop adopts (start, end) as given, but its start must not precede
// today. Any later stop ignores the supplied start and is anchored to the
// previous stop's end; only its end is adopted. Downstream stops are then
// reconciled according to mode.
func (it Itinerary) SetDateRange(id int, r DateRange, today time.Time, mode CascadeMode) (Itinerary, error) {
	i, err := it.indexOf(id)
	if err != nil {
		return it, err
	}
	if r.End.IsZero() {
		return it, fmt.Errorf("%w: end date is required", ErrValidation)
	}

	var start time.Time
	if i == 0 {
		if r.Start.IsZero() {
			return it, fmt.Errorf("%w: start date is required for the first stop", ErrValidation)
		}
		start = Day(r.Start)
		if start.Before(Day(today)) {
			return it, ErrPastStartDate
		}
	} else {
		start = it.Stops[i-1].Dates.End
	}

	end := Day(r.End)
	if end.Before(start) {
		return it, fmt.Errorf("%w: end date must not be before %s", ErrValidation, start.Format(time.DateOnly))
	}

	out := it.clone()
	out.Stops[i].Dates = NewDateRange(start, end)
	out.cascadeFrom(i, mode)
	return out, nil
}

// Apply runs a StopPatch against the stop with the given id.
// The destination is applied before the date range.
func (it Itinerary) Apply(id int, p StopPatch, today time.Time, mode CascadeMode) (Itinerary, error) {
	if p.Destination == nil && p.Dates == nil {
		return it, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	out := it
	var err error
	if p.Destination != nil {
		if out, err = out.SetDestination(id, *p.Destination); err != nil {
			return it, err
		}
	}
	if p.Dates != nil {
		if out, err = out.SetDateRange(id, *p.Dates, today, mode); err != nil {
			return it, err
		}
	}
	return out, nil
}

// Remove deletes the stop with the given id. Returns ErrLastStop when it is
// the only stop. Under CascadeNext the neighbours are not reconciled, so the
// chain may be left with a gap or an overlap.
func (it Itinerary) Remove(id int, mode CascadeMode) (Itinerary, error) {
	i, err := it.indexOf(id)
	if err != nil {
		return it, err
	}
	if it.Len() <= 1 {
		return it, ErrLastStop
	}
	out := Itinerary{Stops: make([]Stop, 0, it.Len()-1)}
	out.Stops = append(out.Stops, it.Stops[:i]...)
	out.Stops = append(out.Stops, it.Stops[i+1:]...)
	if mode == CascadeFull {
		out.cascadeFrom(max(i-1, 0), mode)
	}
	return out, nil
}

// MinDate is the earliest day the calendar may offer for a stop: today for
// the first stop, the previous stop's end for every other one.
func (it Itinerary) MinDate(id int, today time.Time) (time.Time, error) {
	i, err := it.indexOf(id)
	if err != nil {
		return time.Time{}, err
	}
	if i == 0 {
		return Day(today), nil
	}
	return it.Stops[i-1].Dates.End, nil
}

// IsSelectable is the per-day disable predicate for a stop's calendar.
func (it Itinerary) IsSelectable(id int, day, today time.Time) bool {
	minDate, err := it.MinDate(id, today)
	if err != nil {
		return false
	}
	return !Day(day).Before(minDate)
}

// Chained reports whether every stop after the first starts exactly where the
// previous one ends.
func (it Itinerary) Chained() bool {
	for i := 1; i < it.Len(); i++ {
		if !it.Stops[i].Dates.Start.Equal(it.Stops[i-1].Dates.End) {
			return false
		}
	}
	return true
}

// cascadeFrom reconciles the stops after index i. It mutates out in place and
// must only be called on a clone.
func (it *Itinerary) cascadeFrom(i int, mode CascadeMode) {
	if mode != CascadeFull {
		if next := i + 1; next < it.Len() {
			boundary := it.Stops[i].Dates.End
			it.Stops[next].Dates = NewDateRange(boundary, boundary)
		}
		return
	}
	for j := i + 1; j < it.Len(); j++ {
		boundary := it.Stops[j-1].Dates.End
		end := it.Stops[j].Dates.End
		if end.Before(boundary) {
			end = boundary
		}
		it.Stops[j].Dates = NewDateRange(boundary, end)
	}
}

func (it Itinerary) indexOf(id int) (int, error) {
	for i, s := range it.Stops {
		if s.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrStopNotFound, id)
}

func (it Itinerary) clone() Itinerary {
	stops := make([]Stop, len(it.Stops), len(it.Stops)+1)
	copy(stops, it.Stops)
	return Itinerary{Stops: stops}
}

// CalendarBounds is the configuration a date-range calendar needs for a stop.
type CalendarBounds struct {
	StopID int
	// MinDate is the earliest selectable day; every earlier day is disabled.
	MinDate time.Time
	// StartLocked is true when the stop's start is derived from the previous
	// stop and any start the user picks is ignored.
	StartLocked bool
}

// Calendar returns the calendar bounds for a stop.
func (it Itinerary) Calendar(id int, today time.Time) (CalendarBounds, error) {
	minDate, err := it.MinDate(id, today)
	if err != nil {
		return CalendarBounds{}, err
	}
	i, _ := it.indexOf(id)
	return CalendarBounds{StopID: id, MinDate: minDate, StartLocked: i > 0}, nil
}
