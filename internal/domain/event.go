package domain

import "time"

// Event is read-only to the validation engine; Date anchors the
// admission window.
type Event struct {
	ID       string
	Title    string
	Date     time.Time
	Venue    string
	Location string
}
