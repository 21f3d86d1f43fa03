package domain

import "strings"

// ActivityType is what the assignee has to do for the activity.
type ActivityType string

const (
	TypePickUp  ActivityType = "Pick Up"
	TypeDropOff ActivityType = "Drop Off"
	TypeOther   ActivityType = "Other"
)

// Assignee is the parent responsible for an activity.
type Assignee string

const (
	AssigneeMom  Assignee = "Mom"
	AssigneeDad  Assignee = "Dad"
	AssigneeBoth Assignee = "Both"
)

// Category is the coarse domain tag of an activity.
type Category string

const (
	CategoryPhysical Category = "Physical"
	CategorySocial   Category = "Social"
	CategoryCreative Category = "Creative"
	CategoryAcademic Category = "Academic"
	CategoryOther    Category = "Other"
)

// ActivityTypes lists the canonical activity types in display order.
var ActivityTypes = []ActivityType{TypePickUp, TypeDropOff, TypeOther}

// Assignees lists the canonical assignees in display order.
var Assignees = []Assignee{AssigneeMom, AssigneeDad, AssigneeBoth}

// Categories lists the canonical categories in display order.
var Categories = []Category{CategoryPhysical, CategorySocial, CategoryCreative, CategoryAcademic, CategoryOther}

var activityTypeAliases = map[string]ActivityType{
	"pick up":  TypePickUp,
	"pickup":   TypePickUp,
	"pick-up":  TypePickUp,
	"drop off": TypeDropOff,
	"dropoff":  TypeDropOff,
	"drop-off": TypeDropOff,
	"other":    TypeOther,
}

var assigneeAliases = map[string]Assignee{
	"mom":    AssigneeMom,
	"mother": AssigneeMom,
	"mum":    AssigneeMom,
	"dad":    AssigneeDad,
	"father": AssigneeDad,
	"both":   AssigneeBoth,
}

// ParseActivityType maps free-form text onto a canonical type.
func ParseActivityType(s string) (ActivityType, bool) {
	t, ok := activityTypeAliases[normalizeKey(s)]
	return t, ok
}

// ParseAssignee maps free-form text onto a canonical assignee.
func ParseAssignee(s string) (Assignee, bool) {
	a, ok := assigneeAliases[normalizeKey(s)]
	return a, ok
}

// ParseCategory maps free-form text onto a canonical category.
func ParseCategory(s string) (Category, bool) {
	key := normalizeKey(s)
	for _, c := range Categories {
		if strings.ToLower(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
