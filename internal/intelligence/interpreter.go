package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/llm"
)

// Request is one instruction plus the snapshot it is interpreted against.
// Today is the reference date for relative expressions.
type Request struct {
	Text       string
	Members    []domain.Member
	Activities []domain.Activity
	Today      time.Time
}

// Interpreter turns free text into a Command. It holds no per-call state
// and is safe for concurrent use.
type Interpreter struct {
	understanding Understanding
	defaults      Defaults
}

// NewInterpreter creates an Interpreter that delegates to u.
func NewInterpreter(u Understanding, defaults Defaults) *Interpreter {
	return &Interpreter{understanding: u, defaults: defaults}
}

// Interpret classifies req.Text and resolves it against the snapshot.
// Failures are always *InterpretError.
func (in *Interpreter) Interpret(ctx context.Context, req Request) (*Command, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &InterpretError{Code: CodeIntentUnparseable, Message: "text is required"}
	}

	raw, err := in.understanding.ClassifyIntent(ctx, text, req.Today)
	if err != nil {
		return nil, intentUnparseable("", err)
	}
	cls, err := llm.ExtractJSON[classificationOutput](raw, nil)
	if err != nil {
		return nil, intentUnparseable(raw, err)
	}

	action := Action(strings.ToLower(cls.Action.String()))
	if !IsValidAction(action) {
		return nil, unknownAction(cls.Action.String())
	}
	confidence := ParseConfidence(cls.Confidence.String())

	switch action {
	case ActionAdd:
		return in.interpretAdd(ctx, text, req, confidence)
	case ActionEdit, ActionDelete:
		return in.interpretEditOrDelete(ctx, text, req, action, confidence)
	default:
		return in.interpretQuery(ctx, text, req, confidence)
	}
}

func (in *Interpreter) interpretAdd(ctx context.Context, text string, req Request, confidence Confidence) (*Command, error) {
	raw, err := in.understanding.ExtractAddFields(ctx, text, domain.MemberNames(req.Members), req.Today)
	if err != nil {
		return nil, fieldsUnparseable("could not extract activity details", "", err)
	}
	out, err := llm.ExtractJSON[addFieldsOutput](raw, nil)
	if err != nil {
		return nil, fieldsUnparseable("could not extract activity details", raw, err)
	}

	payload, err := in.canonicalAdd(out, req, raw)
	if err != nil {
		return nil, err
	}
	return &Command{Action: ActionAdd, Confidence: confidence, Add: payload}, nil
}

func (in *Interpreter) canonicalAdd(out addFieldsOutput, req Request, raw string) (*AddPayload, error) {
	p := &AddPayload{
		Title:    out.Title.String(),
		Location: out.Location.String(),
		Notes:    out.Notes.String(),
	}
	if p.Title == "" {
		return nil, fieldsUnparseable("activity title is missing", raw, nil)
	}

	if name := out.memberName(); name != "" {
		m, ok := domain.FindMemberByName(req.Members, name)
		if !ok {
			return nil, memberNotFound(name, domain.MemberNames(req.Members))
		}
		p.MemberID = m.ID
		p.MemberName = m.Name
	}

	p.Date = req.Today.Format(domain.DateLayout)
	if v := out.Date.String(); v != "" {
		d, ok := ResolveDate(v, req.Today)
		if !ok {
			return nil, fieldsUnparseable(fmt.Sprintf("unrecognized date %q", v), raw, nil)
		}
		p.Date = d
	}

	p.Time = in.defaults.Time
	if v := out.Time.String(); v != "" {
		t, ok := NormalizeTime(v)
		if !ok {
			return nil, fieldsUnparseable(fmt.Sprintf("unrecognized time %q", v), raw, nil)
		}
		p.Time = t
	}

	p.Type = in.defaults.Type
	if v := out.Type.String(); v != "" {
		t, ok := domain.ParseActivityType(v)
		if !ok {
			return nil, fieldsUnparseable(fmt.Sprintf("unrecognized activity type %q", v), raw, nil)
		}
		p.Type = t
	}

	p.Assignee = in.defaults.Assignee
	if v := out.assignee(); v != "" {
		a, ok := domain.ParseAssignee(v)
		if !ok {
			return nil, fieldsUnparseable(fmt.Sprintf("unrecognized assignee %q", v), raw, nil)
		}
		p.Assignee = a
	}

	// An unknown category is not fatal; the title decides instead.
	if c, ok := domain.ParseCategory(out.category()); ok {
		p.Category = c
	} else {
		p.Category = domain.InferCategory(p.Title)
	}

	return p, nil
}

func (in *Interpreter) interpretEditOrDelete(ctx context.Context, text string, req Request, action Action, confidence Confidence) (*Command, error) {
	if len(req.Activities) == 0 {
		return nil, activityNotFound("")
	}

	descriptions := describeActivities(req.Activities, req.Members)
	isEdit := action == ActionEdit

	raw, err := in.understanding.ResolveEditOrDelete(ctx, text, descriptions, isEdit, req.Today)
	if err != nil {
		return nil, fieldsUnparseable("could not identify the activity", "", err)
	}
	out, err := llm.ExtractJSON[resolutionOutput](raw, nil)
	if err != nil {
		return nil, fieldsUnparseable("could not identify the activity", raw, err)
	}

	id := out.ActivityID.String()
	target, ok := domain.FindActivityByID(req.Activities, id)
	if !ok {
		return nil, activityNotFound(id)
	}
	description := describeActivity(target, req.Members)

	// A missing resolver confidence defers to the classification.
	if rc := out.Confidence.String(); rc != "" {
		confidence = MinConfidence(confidence, ParseConfidence(rc))
	}

	if !isEdit {
		return &Command{
			Action:     ActionDelete,
			Confidence: confidence,
			Delete:     &DeletePayload{ActivityID: target.ID, ActivityDescription: description},
		}, nil
	}

	changes, err := in.canonicalChanges(out.Changes, req, raw)
	if err != nil {
		return nil, err
	}
	return &Command{
		Action:     ActionEdit,
		Confidence: confidence,
		Edit: &EditPayload{
			ActivityID:          target.ID,
			ActivityDescription: description,
			Changes:             changes,
		},
	}, nil
}

func (in *Interpreter) canonicalChanges(rawChanges map[string]json.RawMessage, req Request, raw string) (ChangeSet, error) {
	var cs ChangeSet

	keys := make([]string, 0, len(rawChanges))
	for k := range rawChanges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field, known := changeKeyAliases[strings.ToLower(strings.TrimSpace(k))]
		if !known {
			continue
		}
		var v looseString
		if err := json.Unmarshal(rawChanges[k], &v); err != nil {
			return ChangeSet{}, fieldsUnparseable(fmt.Sprintf("invalid value for %s", k), raw, err)
		}
		value := v.String()
		if value == "" {
			continue
		}

		switch field {
		case "title":
			cs.Title = &value
		case "location":
			cs.Location = &value
		case "notes":
			cs.Notes = &value
		case "date":
			d, ok := ResolveDate(value, req.Today)
			if !ok {
				return ChangeSet{}, fieldsUnparseable(fmt.Sprintf("unrecognized date %q", value), raw, nil)
			}
			cs.Date = &d
		case "time":
			t, ok := NormalizeTime(value)
			if !ok {
				return ChangeSet{}, fieldsUnparseable(fmt.Sprintf("unrecognized time %q", value), raw, nil)
			}
			cs.Time = &t
		case "type":
			t, ok := domain.ParseActivityType(value)
			if !ok {
				return ChangeSet{}, fieldsUnparseable(fmt.Sprintf("unrecognized activity type %q", value), raw, nil)
			}
			cs.Type = &t
		case "assignee":
			a, ok := domain.ParseAssignee(value)
			if !ok {
				return ChangeSet{}, fieldsUnparseable(fmt.Sprintf("unrecognized assignee %q", value), raw, nil)
			}
			cs.Assignee = &a
		case "category":
			c, ok := domain.ParseCategory(value)
			if !ok {
				return ChangeSet{}, fieldsUnparseable(fmt.Sprintf("unrecognized category %q", value), raw, nil)
			}
			cs.Category = &c
		case "member":
			m, ok := domain.FindMemberByName(req.Members, value)
			if !ok {
				return ChangeSet{}, memberNotFound(value, domain.MemberNames(req.Members))
			}
			id := m.ID
			cs.MemberID = &id
		}
	}
	return cs, nil
}

func (in *Interpreter) interpretQuery(ctx context.Context, text string, req Request, confidence Confidence) (*Command, error) {
	lines := make([]string, 0, len(req.Activities))
	for _, a := range req.Activities {
		lines = append(lines, activityContextLine(a, memberNameFor(a, req.Members)))
	}

	raw, err := in.understanding.AnswerQuery(ctx, text, lines, req.Today)
	if err != nil {
		return nil, fieldsUnparseable("could not answer the question", "", err)
	}
	out, err := llm.ExtractJSON[queryOutput](raw, nil)
	if err != nil {
		return nil, fieldsUnparseable("could not answer the question", raw, err)
	}

	q := &QueryPayload{
		Answer:      out.Answer.String(),
		Summary:     out.Summary.String(),
		ActivityIDs: []string{},
		Activities:  []ActivityDetail{},
	}
	seen := make(map[string]bool)
	for _, rawID := range out.MatchingActivityIDs {
		id := rawID.String()
		if seen[id] {
			continue
		}
		a, ok := domain.FindActivityByID(req.Activities, id)
		if !ok {
			continue
		}
		seen[id] = true
		q.ActivityIDs = append(q.ActivityIDs, id)
		q.Activities = append(q.Activities, detailFor(a, req.Members))
	}
	q.Count = len(q.ActivityIDs)

	return &Command{Action: ActionQuery, Confidence: confidence, Query: q}, nil
}

func describeActivities(activities []domain.Activity, members []domain.Member) []ActivityDescription {
	out := make([]ActivityDescription, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivityDescription{ID: a.ID, Description: describeActivity(a, members)})
	}
	return out
}

func describeActivity(a domain.Activity, members []domain.Member) string {
	return a.Describe(memberNameFor(a, members))
}

func memberNameFor(a domain.Activity, members []domain.Member) string {
	if m, ok := domain.FindMemberByID(members, a.MemberID); ok {
		return m.Name
	}
	return ""
}

func detailFor(a domain.Activity, members []domain.Member) ActivityDetail {
	return ActivityDetail{
		ID:         a.ID,
		MemberID:   a.MemberID,
		MemberName: memberNameFor(a, members),
		Title:      a.Title,
		Date:       a.Date,
		Time:       a.Time,
		Location:   a.Location,
		Type:       a.Type,
		Assignee:   a.Assignee,
		Category:   a.Category,
		Notes:      a.Notes,
	}
}
