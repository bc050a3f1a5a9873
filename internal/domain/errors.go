package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested draft, stop, or catalog entry
// does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (e.g. end date before start date, unknown activity slug).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation is well-formed but not allowed
// in the current state of the itinerary.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")

// ErrEndDateRequired rejects appending a stop while the last stop still has
// a zero-length date range.
var ErrEndDateRequired = fmt.Errorf("%w: please choose an end date for the current stop first", ErrValidation)

// ErrPastStartDate rejects a first-stop date range that begins before today.
var ErrPastStartDate = fmt.Errorf("%w: start date must not be before today", ErrValidation)

// ErrLastStop rejects removing the only remaining stop.
var ErrLastStop = fmt.Errorf("%w: an itinerary must keep at least one stop", ErrConflict)

// ErrStopNotFound is returned for an operation that targets a stop id the
// itinerary does not contain.
var ErrStopNotFound = fmt.Errorf("stop %w", ErrNotFound)

// ErrActivityNotSelected is returned when deselecting an activity the draft
// does not hold.
var ErrActivityNotSelected = fmt.Errorf("activity %w in draft", ErrNotFound)
