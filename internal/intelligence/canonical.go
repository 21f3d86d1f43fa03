package intelligence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
)

// Defaults are the values used for fields an instruction leaves out.
type Defaults struct {
	Type     domain.ActivityType
	Assignee domain.Assignee
	Time     string
}

// DefaultDefaults returns the household defaults: pick-ups by Mom at noon.
func DefaultDefaults() Defaults {
	return Defaults{
		Type:     domain.TypePickUp,
		Assignee: domain.AssigneeMom,
		Time:     "12:00",
	}
}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm|a\.m\.|p\.m\.|a|p)?$`)

// NormalizeTime converts a time-of-day expression to strict 24-hour HH:MM.
// A "pm" hour below 12 gains 12 hours, "12am" is midnight, and an hour
// without a suffix passes through unchanged.
func NormalizeTime(s string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(s))
	switch in {
	case "noon", "midday":
		return "12:00", true
	case "midnight":
		return "00:00", true
	}

	m := clockPattern.FindStringSubmatch(in)
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return "", false
	}

	switch strings.TrimSuffix(strings.ReplaceAll(m[3], ".", ""), "m") {
	case "p":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return "", false
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ResolveDate converts a date expression to YYYY-MM-DD relative to today.
// Weekday names resolve to their next occurrence strictly after today.
func ResolveDate(s string, today time.Time) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(s))
	in = strings.TrimPrefix(in, "next ")
	in = strings.TrimPrefix(in, "this ")
	in = strings.TrimPrefix(in, "on ")

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	switch in {
	case "today", "tonight":
		return day.Format(domain.DateLayout), true
	case "tomorrow":
		return day.AddDate(0, 0, 1).Format(domain.DateLayout), true
	case "day after tomorrow":
		return day.AddDate(0, 0, 2).Format(domain.DateLayout), true
	}

	if wd, ok := weekdays[in]; ok {
		ahead := (int(wd) - int(day.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return day.AddDate(0, 0, ahead).Format(domain.DateLayout), true
	}

	if t, err := time.Parse(domain.DateLayout, in); err == nil {
		return t.Format(domain.DateLayout), true
	}
	return "", false
}
