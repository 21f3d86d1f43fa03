package formatter

import (
	"fmt"
	"strings"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/service"
)

const clarificationHint = "Low confidence match. Try naming the member and the date."

// FormatOutcome renders an interpreted command for review before it is
// applied. members resolves member ids to names.
func FormatOutcome(o *service.Outcome, members []domain.Member) string {
	cmd := o.Command
	var title, body string
	switch cmd.Action {
	case intelligence.ActionAdd:
		title, body = "Add activity", formatAdd(cmd.Add, members)
	case intelligence.ActionEdit:
		title, body = "Edit activity", formatEdit(cmd.Edit, members)
	case intelligence.ActionDelete:
		title, body = "Delete activity", formatDelete(cmd.Delete)
	case intelligence.ActionQuery:
		title, body = "Answer", formatQuery(cmd.Query)
	default:
		title, body = string(cmd.Action), ""
	}

	footer := ConfidenceIndicator(cmd.Confidence) + "  " + StatePill(o.State)
	if o.State == intelligence.StateNeedsClarification {
		footer += "\n" + Dim(clarificationHint)
	}
	return RenderBox(title, body+"\n\n"+footer) + "\n"
}

func formatAdd(p *intelligence.AddPayload, members []domain.Member) string {
	if p == nil {
		return ""
	}
	return labeled([][2]string{
		{"Title", Bold(p.Title)},
		{"Member", memberLabel(p.MemberID, members)},
		{"When", When(p.Date, p.Time)},
		{"Location", orDash(p.Location)},
		{"Type", string(p.Type)},
		{"Assignee", string(p.Assignee)},
		{"Category", CategoryBadge(p.Category)},
		{"Notes", orDash(p.Notes)},
	})
}

func formatEdit(p *intelligence.EditPayload, members []domain.Member) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(Bold(p.ActivityDescription))
	b.WriteString("\n")
	if p.Changes.IsEmpty() {
		b.WriteString(Dim("no changes"))
		return b.String()
	}
	var pairs [][2]string
	for _, key := range p.Changes.Keys() {
		pairs = append(pairs, [2]string{key, "→ " + changeValue(p.Changes, key, members)})
	}
	b.WriteString(labeled(pairs))
	return b.String()
}

func changeValue(c intelligence.ChangeSet, key string, members []domain.Member) string {
	switch key {
	case "title":
		return *c.Title
	case "date":
		return *c.Date
	case "time":
		return *c.Time
	case "location":
		return *c.Location
	case "type":
		return string(*c.Type)
	case "assignee":
		return string(*c.Assignee)
	case "category":
		return CategoryBadge(*c.Category)
	case "notes":
		return *c.Notes
	case "memberId":
		return memberLabel(*c.MemberID, members)
	}
	return ""
}

func formatDelete(p *intelligence.DeletePayload) string {
	if p == nil {
		return ""
	}
	return StyleRed.Render("✖ ") + Bold(p.ActivityDescription)
}

func formatQuery(p *intelligence.QueryPayload) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(p.Answer)
	if p.Summary != "" {
		b.WriteString("\n" + Dim(p.Summary))
	}
	if p.Count > 0 {
		rows := make([][]string, 0, len(p.Activities))
		for _, a := range p.Activities {
			rows = append(rows, []string{a.Title, orDash(a.MemberName), When(a.Date, a.Time), orDash(a.Location)})
		}
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(RenderTable([]string{"ACTIVITY", "MEMBER", "WHEN", "WHERE"}, rows), "\n"))
	}
	b.WriteString("\n" + Dim(fmt.Sprintf("%d matching", p.Count)))
	return b.String()
}

// FormatApplyResult confirms a write.
func FormatApplyResult(r *service.ApplyResult) string {
	switch r.Action {
	case intelligence.ActionAdd:
		return StyleGreen.Render("✔ Added ") + Bold(r.Activity.Title) + " " + TruncID(r.Activity.ID) + "\n"
	case intelligence.ActionEdit:
		return StyleGreen.Render("✔ Updated ") + Bold(r.Activity.Title) + " " + TruncID(r.Activity.ID) + "\n"
	case intelligence.ActionDelete:
		return StyleGreen.Render("✔ Deleted ") + TruncID(r.DeletedID) + "\n"
	}
	return ""
}

func memberLabel(id string, members []domain.Member) string {
	if id == "" {
		return Dim("unassigned")
	}
	if m, ok := domain.FindMemberByID(members, id); ok {
		return m.Name
	}
	return TruncID(id)
}
