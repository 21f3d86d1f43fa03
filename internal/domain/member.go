package domain

import (
	"strings"
	"time"
)

// Member is one person on the household roster.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       *int      `json:"age,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FindMemberByName returns the first member whose name equals name,
// ignoring case and surrounding whitespace.
func FindMemberByName(members []Member, name string) (Member, bool) {
	want := strings.TrimSpace(name)
	if want == "" {
		return Member{}, false
	}
	for _, m := range members {
		if strings.EqualFold(strings.TrimSpace(m.Name), want) {
			return m, true
		}
	}
	return Member{}, false
}

// FindMemberByID returns the member with the given id.
func FindMemberByID(members []Member, id string) (Member, bool) {
	if id == "" {
		return Member{}, false
	}
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// MemberNames returns the roster names in roster order.
func MemberNames(members []Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return names
}
