package intelligence

import (
	"strings"

	"github.com/famcoord/famcoord/internal/domain"
)

// Action enumerates the commands the interpreter can produce.
type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionQuery  Action = "query"
)

var validActions = map[Action]bool{
	ActionAdd: true, ActionEdit: true, ActionDelete: true, ActionQuery: true,
}

// IsValidAction returns true if a is one of the four known actions.
func IsValidAction(a Action) bool {
	return validActions[a]
}

// IsWriteAction returns true if the action mutates the schedule.
func IsWriteAction(a Action) bool {
	return a == ActionAdd || a == ActionEdit || a == ActionDelete
}

// Confidence is a coarse reliability label.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

var confidenceRank = map[Confidence]int{
	ConfidenceLow: 0, ConfidenceMedium: 1, ConfidenceHigh: 2,
}

// ParseConfidence maps capability output onto a Confidence. Anything
// unrecognized, including an empty string, is treated as low.
func ParseConfidence(s string) Confidence {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := confidenceRank[c]; ok {
		return c
	}
	return ConfidenceLow
}

// MinConfidence returns the less certain of a and b.
func MinConfidence(a, b Confidence) Confidence {
	if confidenceRank[b] < confidenceRank[a] {
		return b
	}
	return a
}

// Command is the structured result of interpreting one instruction.
// Exactly one payload is set, matching Action.
type Command struct {
	Action     Action         `json:"action"`
	Confidence Confidence     `json:"confidence"`
	Add        *AddPayload    `json:"add,omitempty"`
	Edit       *EditPayload   `json:"edit,omitempty"`
	Delete     *DeletePayload `json:"delete,omitempty"`
	Query      *QueryPayload  `json:"query,omitempty"`
}

// Data returns the payload matching the command's action.
func (c *Command) Data() any {
	switch c.Action {
	case ActionAdd:
		return c.Add
	case ActionEdit:
		return c.Edit
	case ActionDelete:
		return c.Delete
	case ActionQuery:
		return c.Query
	}
	return nil
}

// AddPayload carries the canonical fields of a new activity. An empty
// MemberID means the activity is unassigned.
type AddPayload struct {
	MemberID   string              `json:"memberId,omitempty"`
	MemberName string              `json:"memberName,omitempty"`
	Title      string              `json:"title"`
	Date       string              `json:"date"`
	Time       string              `json:"time"`
	Location   string              `json:"location,omitempty"`
	Type       domain.ActivityType `json:"type"`
	Assignee   domain.Assignee     `json:"assignee"`
	Category   domain.Category     `json:"category"`
	Notes      string              `json:"notes,omitempty"`
}

// EditPayload targets one snapshot activity with a sparse change set.
type EditPayload struct {
	ActivityID          string    `json:"activityId"`
	ActivityDescription string    `json:"activityDescription"`
	Changes             ChangeSet `json:"changes"`
}

// DeletePayload targets one snapshot activity.
type DeletePayload struct {
	ActivityID          string `json:"activityId"`
	ActivityDescription string `json:"activityDescription"`
}

// QueryPayload answers a question about the schedule.
type QueryPayload struct {
	Answer      string           `json:"answer"`
	Summary     string           `json:"summary"`
	ActivityIDs []string         `json:"matchingActivityIds"`
	Activities  []ActivityDetail `json:"activities"`
	Count       int              `json:"count"`
}

// ActivityDetail is an activity expanded with its member's name.
type ActivityDetail struct {
	ID         string              `json:"id"`
	MemberID   string              `json:"memberId,omitempty"`
	MemberName string              `json:"memberName,omitempty"`
	Title      string              `json:"title"`
	Date       string              `json:"date"`
	Time       string              `json:"time"`
	Location   string              `json:"location,omitempty"`
	Type       domain.ActivityType `json:"type"`
	Assignee   domain.Assignee     `json:"assignee"`
	Category   domain.Category     `json:"category"`
	Notes      string              `json:"notes,omitempty"`
}

// ChangeSet is a sparse field-level edit. A nil field means "not
// mentioned"; only set fields are serialized.
type ChangeSet struct {
	Title    *string              `json:"title,omitempty"`
	Date     *string              `json:"date,omitempty"`
	Time     *string              `json:"time,omitempty"`
	Location *string              `json:"location,omitempty"`
	Type     *domain.ActivityType `json:"type,omitempty"`
	Assignee *domain.Assignee     `json:"assignee,omitempty"`
	Category *domain.Category     `json:"category,omitempty"`
	Notes    *string              `json:"notes,omitempty"`
	MemberID *string              `json:"memberId,omitempty"`
}

// Keys lists the fields present in the change set.
func (c ChangeSet) Keys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(c.Title != nil, "title")
	add(c.Date != nil, "date")
	add(c.Time != nil, "time")
	add(c.Location != nil, "location")
	add(c.Type != nil, "type")
	add(c.Assignee != nil, "assignee")
	add(c.Category != nil, "category")
	add(c.Notes != nil, "notes")
	add(c.MemberID != nil, "memberId")
	return keys
}

// Len returns the number of fields present.
func (c ChangeSet) Len() int {
	return len(c.Keys())
}

// IsEmpty reports whether nothing would change.
func (c ChangeSet) IsEmpty() bool {
	return c.Len() == 0
}

// ApplyTo copies the present fields onto a.
func (c ChangeSet) ApplyTo(a *domain.Activity) {
	if c.Title != nil {
		a.Title = *c.Title
	}
	if c.Date != nil {
		a.Date = *c.Date
	}
	if c.Time != nil {
		a.Time = *c.Time
	}
	if c.Location != nil {
		a.Location = *c.Location
	}
	if c.Type != nil {
		a.Type = *c.Type
	}
	if c.Assignee != nil {
		a.Assignee = *c.Assignee
	}
	if c.Category != nil {
		a.Category = *c.Category
	}
	if c.Notes != nil {
		a.Notes = *c.Notes
	}
	if c.MemberID != nil {
		a.MemberID = *c.MemberID
	}
}

// ActivityDescription pairs an activity id with its one-line rendering.
type ActivityDescription struct {
	ID          string
	Description string
}
