package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/calsync"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
)

// FormatActivities renders the schedule as a table, relative to today.
func FormatActivities(activities []domain.Activity, members []domain.Member, today time.Time) string {
	if len(activities) == 0 {
		return Dim("No activities scheduled.") + "\n"
	}
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{
			TruncID(a.ID),
			a.Title,
			memberLabel(a.MemberID, members),
			When(a.Date, a.Time),
			RelativeDay(a.Date, today),
			string(a.Type) + " / " + string(a.Assignee),
			CategoryBadge(a.Category),
		})
	}
	return RenderTable([]string{"ID", "ACTIVITY", "MEMBER", "WHEN", "", "WHO", "CATEGORY"}, rows)
}

func FormatMembers(members []domain.Member) string {
	if len(members) == 0 {
		return Dim("No members yet. Add one with: famcoord member add <name>") + "\n"
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		age := "--"
		if m.Age != nil {
			age = strconv.Itoa(*m.Age)
		}
		rows = append(rows, []string{TruncID(m.ID), Bold(m.Name), age, orDash(m.Color)})
	}
	return RenderTable([]string{"ID", "NAME", "AGE", "COLOR"}, rows)
}

func FormatPrepTasks(title string, tasks []string) string {
	if len(tasks) == 0 {
		return Dim("No prep tasks suggested.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Prep for " + title))
	b.WriteString("\n")
	for _, t := range tasks {
		b.WriteString("  ○ " + t + "\n")
	}
	return b.String()
}

func FormatRecommendations(location string, recs []intelligence.Recommendation) string {
	var b strings.Builder
	b.WriteString(Header("Ideas near " + location))
	b.WriteString("\n")
	for i, r := range recs {
		fmt.Fprintf(&b, "%s %s %s\n", StyleHeader.Render(strconv.Itoa(i+1)+"."), Bold(r.Title), Dim("@ "+orDash(r.Venue)))
		details := []string{string(r.Type), FormatMinutes(r.DurationMin)}
		if r.AgeAppropriate != "" {
			details = append(details, "ages "+r.AgeAppropriate)
		}
		if r.BestTime != "" {
			details = append(details, r.BestTime)
		}
		b.WriteString("   " + Dim(strings.Join(details, " · ")) + "\n")
		if r.Notes != "" {
			b.WriteString("   " + r.Notes + "\n")
		}
	}
	return b.String()
}

func FormatImportResult(r *calsync.ImportResult, dryRun bool) string {
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	line := fmt.Sprintf("%s %d of %d events (%d skipped, %d duplicates)",
		verb, r.Imported, r.Total, r.Skipped, r.Duplicates)
	if r.Imported == 0 {
		return StyleYellow.Render("○ "+line) + "\n"
	}
	return StyleGreen.Render("✔ "+line) + "\n"
}
