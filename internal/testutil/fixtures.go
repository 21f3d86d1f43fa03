package testutil

import (
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// MemberOption customizes a test member.
type MemberOption func(*domain.Member)

func WithAge(age int) MemberOption {
	return func(m *domain.Member) {
		m.Age = &age
	}
}

func WithColor(c string) MemberOption {
	return func(m *domain.Member) {
		m.Color = c
	}
}

func NewTestMember(name string, opts ...MemberOption) *domain.Member {
	m := &domain.Member{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ActivityOption customizes a test activity.
type ActivityOption func(*domain.Activity)

func WithSchedule(date, clock string) ActivityOption {
	return func(a *domain.Activity) {
		a.Date = date
		a.Time = clock
	}
}

func WithLocation(loc string) ActivityOption {
	return func(a *domain.Activity) {
		a.Location = loc
	}
}

func WithType(t domain.ActivityType) ActivityOption {
	return func(a *domain.Activity) {
		a.Type = t
	}
}

func WithAssignee(as domain.Assignee) ActivityOption {
	return func(a *domain.Activity) {
		a.Assignee = as
	}
}

func WithCalendarEventID(id string) ActivityOption {
	return func(a *domain.Activity) {
		a.CalendarEventID = id
	}
}

func WithPrepTasks(tasks ...string) ActivityOption {
	return func(a *domain.Activity) {
		a.PrepTasks = tasks
	}
}

// NewTestActivity builds an activity for memberID ("" for unassigned)
// scheduled 2025-10-25 at 15:00 unless overridden.
func NewTestActivity(memberID, title string, opts ...ActivityOption) *domain.Activity {
	now := time.Now().UTC().Truncate(time.Second)
	a := &domain.Activity{
		ID:          ulid.Make().String(),
		MemberID:    memberID,
		Title:       title,
		Date:        "2025-10-25",
		Time:        "15:00",
		Type:        domain.TypePickUp,
		Assignee:    domain.AssigneeMom,
		Category:    domain.InferCategory(title),
		DurationMin: domain.DefaultDurationMin,
		CreatedBy:   "test",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}
