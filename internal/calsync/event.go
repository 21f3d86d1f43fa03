// Package calsync moves activities between the store and external calendars:
// importing events from Google Calendar, exporting iCalendar files and
// publishing to a CalDAV collection.
package calsync

import (
	"context"
	"time"
)

// Event is a calendar event reduced to the fields an import needs.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	// AllDay is set for events that carry a date but no time of day.
	AllDay bool
}

// EventSource lists events starting inside [from, to).
type EventSource interface {
	Events(ctx context.Context, from, to time.Time) ([]Event, error)
}
