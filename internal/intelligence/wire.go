package intelligence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// looseString accepts a JSON string, number, boolean or null. Models are
// not reliable about quoting scalars, so every capability field is read
// through it and validated afterwards.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", data)
	default:
		*s = looseString(data)
		return nil
	}
}

func (s looseString) String() string {
	return strings.TrimSpace(string(s))
}

// classificationOutput is the raw shape returned by ClassifyIntent.
type classificationOutput struct {
	Action     looseString `json:"action"`
	Confidence looseString `json:"confidence"`
}

// addFieldsOutput is the raw shape returned by ExtractAddFields. The
// original field names (kidName, parent, activityCategory) are accepted
// alongside the current ones.
type addFieldsOutput struct {
	MemberName       looseString `json:"memberName"`
	KidName          looseString `json:"kidName"`
	Title            looseString `json:"title"`
	Date             looseString `json:"date"`
	Time             looseString `json:"time"`
	Location         looseString `json:"location"`
	Type             looseString `json:"type"`
	Assignee         looseString `json:"assignee"`
	Parent           looseString `json:"parent"`
	Category         looseString `json:"category"`
	ActivityCategory looseString `json:"activityCategory"`
	Notes            looseString `json:"notes"`
}

func (o addFieldsOutput) memberName() string {
	return firstNonEmpty(o.MemberName.String(), o.KidName.String())
}

func (o addFieldsOutput) assignee() string {
	return firstNonEmpty(o.Assignee.String(), o.Parent.String())
}

func (o addFieldsOutput) category() string {
	return firstNonEmpty(o.Category.String(), o.ActivityCategory.String())
}

// resolutionOutput is the raw shape returned by ResolveEditOrDelete.
// Changes are kept raw so absent, null and malformed values can be told
// apart.
type resolutionOutput struct {
	ActivityID looseString                `json:"activityId"`
	Changes    map[string]json.RawMessage `json:"changes"`
	Confidence looseString                `json:"confidence"`
}

// queryOutput is the raw shape returned by AnswerQuery.
type queryOutput struct {
	Answer              looseString   `json:"answer"`
	Summary             looseString   `json:"summary"`
	MatchingActivityIDs []looseString `json:"matchingActivityIds"`
}

// changeKeyAliases maps change-set keys from the capability onto
// canonical field names. Keys not listed are dropped.
var changeKeyAliases = map[string]string{
	"title":            "title",
	"name":             "title",
	"date":             "date",
	"time":             "time",
	"location":         "location",
	"type":             "type",
	"assignee":         "assignee",
	"parent":           "assignee",
	"category":         "category",
	"activitycategory": "category",
	"notes":            "notes",
	"member":           "member",
	"membername":       "member",
	"kid":              "member",
	"kidname":          "member",
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
