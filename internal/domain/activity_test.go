package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivity_Describe(t *testing.T) {
	a := Activity{Title: "Soccer", Date: "2025-10-25", Time: "15:00"}
	assert.Equal(t, "Soccer for Emma on 2025-10-25 at 15:00", a.Describe("Emma"))
	assert.Equal(t, "Soccer for unassigned on 2025-10-25 at 15:00", a.Describe(""))
}

func TestActivity_StartTimeAndDuration(t *testing.T) {
	a := Activity{ID: "a1", Date: "2025-10-25", Time: "15:30"}
	start, err := a.StartTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 25, 15, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Hour, a.Duration())

	a.DurationMin = 45
	assert.Equal(t, 45*time.Minute, a.Duration())

	_, err = Activity{ID: "bad", Date: "tomorrow", Time: "15:00"}.StartTime(time.UTC)
	assert.Error(t, err)
}

func TestFindMemberByName_CaseInsensitive(t *testing.T) {
	roster := []Member{{ID: "m1", Name: "Emma"}, {ID: "m2", Name: "Liam"}}

	for _, name := range []string{"emma", "EMMA", " Emma ", "eMmA"} {
		m, ok := FindMemberByName(roster, name)
		require.True(t, ok, name)
		assert.Equal(t, "m1", m.ID)
	}

	_, ok := FindMemberByName(roster, "Zoe")
	assert.False(t, ok)
	_, ok = FindMemberByName(roster, "")
	assert.False(t, ok)
}

func TestParseEnums(t *testing.T) {
	typ, ok := ParseActivityType("pickup")
	assert.True(t, ok)
	assert.Equal(t, TypePickUp, typ)

	typ, ok = ParseActivityType("Drop  Off")
	assert.True(t, ok)
	assert.Equal(t, TypeDropOff, typ)

	_, ok = ParseActivityType("Appointment")
	assert.False(t, ok)

	as, ok := ParseAssignee("DAD")
	assert.True(t, ok)
	assert.Equal(t, AssigneeDad, as)

	cat, ok := ParseCategory("creative")
	assert.True(t, ok)
	assert.Equal(t, CategoryCreative, cat)

	_, ok = ParseCategory("Wellness")
	assert.False(t, ok)
}

func TestInferCategory(t *testing.T) {
	cases := map[string]Category{
		"Soccer":               CategoryPhysical,
		"Swimming lessons":     CategoryPhysical,
		"Dance class":          CategoryPhysical,
		"Birthday party":       CategorySocial,
		"Piano lesson":         CategoryCreative,
		"Art club":             CategoryCreative,
		"Math tutor":           CategoryAcademic,
		"Smart start workshop": CategoryOther,
		"Dentist":              CategoryOther,
		"":                     CategoryOther,
	}
	for title, want := range cases {
		assert.Equal(t, want, InferCategory(title), "title=%q", title)
	}
}

func TestCategoryKeywords_NoCrossCategoryPrefixes(t *testing.T) {
	for ca, kwsA := range categoryKeywords {
		for cb, kwsB := range categoryKeywords {
			if ca == cb {
				continue
			}
			for _, a := range kwsA {
				for _, b := range kwsB {
					assert.False(t, strings.HasPrefix(b, a),
						"%s keyword %q is a prefix of %s keyword %q", ca, a, cb, b)
				}
			}
		}
	}
}
