package domain

// Picker records which stop's date-range calendar is open, if any.
// At most one calendar is open at a time: opening another one replaces it.
type Picker struct {
	open   bool
	stopID int
}

// Open returns a picker with the calendar of stopID open.
func (p Picker) Open(stopID int) Picker {
	return Picker{open: true, stopID: stopID}
}

// Close returns a picker with no calendar open. Used for clicks outside the
// open calendar.
func (Picker) Close() Picker {
	return Picker{}
}

// OpenStop returns the id of the stop whose calendar is open.
func (p Picker) OpenStop() (int, bool) {
	return p.stopID, p.open
}

// IsOpen reports whether the calendar of stopID is the open one.
func (p Picker) IsOpen(stopID int) bool {
	return p.open && p.stopID == stopID
}
