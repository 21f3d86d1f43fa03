package calsync

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/famcoord/famcoord/internal/domain"
)

const productID = "-//famcoord//activities//EN"

// uidSuffix keeps exported UIDs globally unique.
const uidSuffix = "@famcoord"

// Exporter renders activities as iCalendar data.
type Exporter struct {
	loc *time.Location
	now func() time.Time
}

func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{loc: loc, now: time.Now}
}

// Calendar builds one VCALENDAR holding a VEVENT per activity.
func (e *Exporter) Calendar(activities []domain.Activity, members []domain.Member) (*ical.Calendar, error) {
	cal := newCalendar()
	for _, a := range activities {
		ev, err := e.Event(a, members)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal, nil
}

// Encode writes the activities to w as an .ics document.
func (e *Exporter) Encode(w io.Writer, activities []domain.Activity, members []domain.Member) error {
	cal, err := e.Calendar(activities, members)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// Event converts one activity into a VEVENT.
func (e *Exporter) Event(a domain.Activity, members []domain.Member) (*ical.Event, error) {
	start, err := a.StartTime(e.loc)
	if err != nil {
		return nil, err
	}
	memberName := ""
	if m, ok := domain.FindMemberByID(members, a.MemberID); ok {
		memberName = m.Name
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, EventUID(a.ID))
	ev.Props.SetText(ical.PropSummary, summary(a.Title, memberName))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, e.now().UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(a.Duration()).UTC())
	if a.Location != "" {
		ev.Props.SetText(ical.PropLocation, a.Location)
	}
	if a.Category != "" {
		ev.Props.SetText(ical.PropCategories, string(a.Category))
	}
	ev.Props.SetText(ical.PropDescription, description(a))
	return ev, nil
}

// EventUID is the iCalendar UID for an activity id.
func EventUID(activityID string) string {
	return activityID + uidSuffix
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

func summary(title, memberName string) string {
	if memberName == "" {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, memberName)
}

func description(a domain.Activity) string {
	lines := []string{fmt.Sprintf("%s: %s", a.Type, a.Assignee)}
	if a.Notes != "" {
		lines = append(lines, a.Notes)
	}
	if len(a.PrepTasks) > 0 {
		lines = append(lines, "Prep: "+strings.Join(a.PrepTasks, ", "))
	}
	return strings.Join(lines, "\n")
}
