package domain

import (
	"strings"
	"unicode"
)

// categoryKeywords maps each category to the word prefixes that imply it.
// A keyword matches a title word that starts with it ("swim" matches
// "swimming"). Entries are checked in categoryPriority order so a title
// hitting several categories resolves the same way every time.
var categoryKeywords = map[Category][]string{
	CategoryPhysical: {
		"soccer", "football", "basketball", "baseball", "hockey", "tennis",
		"swim", "danc", "ballet", "gym", "sport", "karate", "yoga", "martial",
		"climb", "skat", "bike", "cycl",
	},
	CategorySocial: {
		"party", "parties", "playdate", "friend", "sleepover", "birthday",
		"picnic", "scout",
	},
	CategoryCreative: {
		"piano", "art", "music", "draw", "paint", "theater", "theatre", "drama",
		"guitar", "violin", "choir", "sing", "craft", "pottery",
	},
	CategoryAcademic: {
		"tutor", "school", "class", "homework", "study", "lesson", "reading",
		"math", "science", "library", "exam",
	},
}

var categoryPriority = []Category{CategoryPhysical, CategorySocial, CategoryCreative, CategoryAcademic}

// InferCategory guesses a category from an activity title. Titles that hit
// no keyword fall back to CategoryOther.
func InferCategory(title string) Category {
	words := titleWords(title)
	for _, c := range categoryPriority {
		for _, kw := range categoryKeywords[c] {
			for _, w := range words {
				if strings.HasPrefix(w, kw) {
					return c
				}
			}
		}
	}
	return CategoryOther
}

func titleWords(title string) []string {
	return strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
