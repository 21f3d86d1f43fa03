package domain

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical calendar-date format.
	DateLayout = "2006-01-02"
	// TimeLayout is the canonical 24-hour time-of-day format.
	TimeLayout = "15:04"

	DefaultDurationMin = 60
)

// Activity is a scheduled family activity. An empty MemberID means the
// activity is not assigned to anyone yet.
type Activity struct {
	ID              string       `json:"id"`
	MemberID        string       `json:"memberId,omitempty"`
	Title           string       `json:"title"`
	Date            string       `json:"date"`
	Time            string       `json:"time"`
	Location        string       `json:"location,omitempty"`
	Type            ActivityType `json:"type"`
	Assignee        Assignee     `json:"assignee"`
	Category        Category     `json:"category"`
	Notes           string       `json:"notes,omitempty"`
	DurationMin     int          `json:"durationMin,omitempty"`
	PrepTasks       []string     `json:"prepTasks,omitempty"`
	CreatedBy       string       `json:"createdBy,omitempty"`
	CalendarEventID string       `json:"calendarEventId,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Describe renders the one-line description used to disambiguate activities,
// e.g. "Soccer for Emma on 2025-10-25 at 15:00".
func (a Activity) Describe(memberName string) string {
	if memberName == "" {
		memberName = "unassigned"
	}
	return fmt.Sprintf("%s for %s on %s at %s", a.Title, memberName, a.Date, a.Time)
}

// StartTime combines Date and Time in loc.
func (a Activity) StartTime(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("activity %s start: %w", a.ID, err)
	}
	return t, nil
}

// Duration returns the activity length, falling back to DefaultDurationMin.
func (a Activity) Duration() time.Duration {
	if a.DurationMin <= 0 {
		return DefaultDurationMin * time.Minute
	}
	return time.Duration(a.DurationMin) * time.Minute
}

// FindActivityByID returns the activity with the given id.
func FindActivityByID(activities []Activity, id string) (Activity, bool) {
	if id == "" {
		return Activity{}, false
	}
	for _, a := range activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}
