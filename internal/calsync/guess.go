package calsync

import (
	"strings"

	"github.com/famcoord/famcoord/internal/domain"
)

var (
	pickUpPhrases  = []string{"pickup", "pick up", "pick-up"}
	dropOffPhrases = []string{"dropoff", "drop off", "drop-off"}
)

// GuessType reads a pick-up or drop-off hint out of an event title.
func GuessType(title string) domain.ActivityType {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, pickUpPhrases):
		return domain.TypePickUp
	case containsAny(t, dropOffPhrases):
		return domain.TypeDropOff
	default:
		return domain.TypeOther
	}
}

// GuessMember returns the first roster member whose name appears in title.
func GuessMember(title string, members []domain.Member) (domain.Member, bool) {
	t := strings.ToLower(title)
	for _, m := range members {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name != "" && strings.Contains(t, name) {
			return m, true
		}
	}
	return domain.Member{}, false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
