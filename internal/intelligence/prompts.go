package intelligence

import (
	"fmt"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
)

// classifySystemPrompt instructs the LLM to pick one of the four actions.
const classifySystemPrompt = `You classify instructions for a family activity scheduler.
Today's date: %s

Respond with ONLY a JSON object in this exact format:
{"action": "add" | "edit" | "delete" | "query", "confidence": "high" | "medium" | "low"}

Examples:
- "Soccer for Emma tomorrow at 3pm" -> {"action": "add", "confidence": "high"}
- "Emma has piano on Friday" -> {"action": "add", "confidence": "high"}
- "Change Emma's soccer to 5pm" -> {"action": "edit", "confidence": "high"}
- "Update dance class time" -> {"action": "edit", "confidence": "high"}
- "Delete Emma's soccer on Tuesday" -> {"action": "delete", "confidence": "high"}
- "Remove swimming" -> {"action": "delete", "confidence": "medium"}
- "What does Liam have this week?" -> {"action": "query", "confidence": "high"}
- "Who is picking up on Saturday?" -> {"action": "query", "confidence": "high"}

Keywords:
- add: describes an activity with a time or date, without change/delete words
- edit: "change", "update", "move", "reschedule", "modify"
- delete: "delete", "remove", "cancel", "drop"
- query: questions ("what", "when", "who", "how many", "is there")

Output ONLY the JSON object, no markdown, no explanation.`

// extractSystemPrompt instructs the LLM to pull new-activity fields.
const extractSystemPrompt = `You turn a sentence into activity data for a family scheduler.
Available members: %s
Today's date: %s (tomorrow is %s)

Extract these fields from the user's text:
- memberName: which member (must match one of the available members exactly; omit if none is mentioned)
- title: short activity name
- date: YYYY-MM-DD; "today" = %s, "tomorrow" = %s, a weekday name = its next occurrence after today
- time: HH:MM 24-hour; "3pm" = "15:00", "10am" = "10:00", "12pm" = "12:00", "12am" = "00:00"
- location: where, if mentioned
- type: "Pick Up", "Drop Off", or "Other"
- assignee: "Mom", "Dad", or "Both"
- category: "Physical", "Social", "Creative", "Academic", or "Other"
- notes: any additional info

Rules:
1. If a time has "pm" and the hour is below 12, add 12.
2. If a time has "am" or no suffix, keep the hour as written.
3. Omit any field that is not mentioned. Do not invent values.
4. Infer category from the activity (soccer = Physical, art = Creative).

Example:
{"memberName": "Emma", "title": "Soccer practice", "date": "2025-10-25", "time": "15:00", "location": "Central Park", "type": "Pick Up", "assignee": "Mom", "category": "Physical"}

Respond ONLY with the JSON object.`

// resolveEditSystemPrompt asks the LLM to pick an activity and the changed fields.
const resolveEditSystemPrompt = `You identify which scheduled activity the user wants to change.
Today's date: %s

Available activities:
%s

Also extract ONLY the fields the user wants changed. Leave out everything
they did not mention; never repeat unchanged values.
- time: HH:MM 24-hour
- date: YYYY-MM-DD
- title, location, notes: free text
- assignee: "Mom", "Dad", or "Both"
- type: "Pick Up", "Drop Off", or "Other"
- category: "Physical", "Social", "Creative", "Academic", or "Other"
- member: the member the activity should move to

Respond with JSON:
{"activityId": "the ID of the matching activity", "changes": {"time": "17:00"}, "confidence": "high" | "medium" | "low"}

Match on member name, activity name, date and time when mentioned.
If several activities match or none matches well, set confidence to "low"
and pick the best match.

Respond ONLY with the JSON object.`

// resolveDeleteSystemPrompt asks the LLM to pick the activity to delete.
const resolveDeleteSystemPrompt = `You identify which scheduled activity the user wants to delete.
Today's date: %s

Available activities:
%s

Respond with JSON:
{"activityId": "the ID of the matching activity", "confidence": "high" | "medium" | "low"}

Match on member name, activity name, date and time when mentioned.
If several activities match or none matches well, set confidence to "low"
and pick the best match.

Respond ONLY with the JSON object.`

// querySystemPrompt asks the LLM to answer a schedule question.
const querySystemPrompt = `You answer questions about a family's activity schedule.
Today's date: %s

Scheduled activities:
%s

Respond with JSON:
{"answer": "a friendly answer in one or two sentences", "summary": "a short headline", "matchingActivityIds": ["ids of the activities the answer refers to"]}

Only use ids from the list above. Use an empty list when nothing matches.
Respond ONLY with the JSON object.`

// prepTasksSystemPrompt asks for a short checklist.
const prepTasksSystemPrompt = `You suggest prep tasks for family activities and appointments. Return ONLY a JSON array of 3-5 short task strings. Each task should be 2-5 words. Example: ["Confirm appointment", "Bring insurance card", "Arrive 10 min early"]`

// recommendSystemPrompt asks for venue-backed activity ideas.
const recommendSystemPrompt = `You recommend kid-friendly activities and venues.

Given a location and information about the family, suggest 5-8 specific, real activities with venues.

For each activity, provide:
- title: activity name (e.g., "Swimming Lessons", "Visit Science Museum")
- venue: specific venue name and address
- type: "Pick Up", "Drop Off", or "Other"
- durationMin: estimated duration in minutes
- ageAppropriate: which age range this suits (e.g., "5-10 years")
- bestTime: suggested time of day or days
- notes: brief description and tips

IMPORTANT: Return ONLY a valid JSON array. Start with [ and end with ]. No markdown, no explanations.`

func buildClassifySystemPrompt(today time.Time) string {
	return fmt.Sprintf(classifySystemPrompt, formatDay(today))
}

func buildExtractSystemPrompt(memberNames []string, today time.Time) string {
	names := "(none)"
	if len(memberNames) > 0 {
		names = strings.Join(memberNames, ", ")
	}
	d := formatDay(today)
	tomorrow := formatDay(today.AddDate(0, 0, 1))
	return fmt.Sprintf(extractSystemPrompt, names, d, tomorrow, d, tomorrow)
}

func buildResolveSystemPrompt(descriptions []ActivityDescription, isEdit bool, today time.Time) string {
	var b strings.Builder
	for i, d := range descriptions {
		fmt.Fprintf(&b, "%d. ID: %s, Description: %s\n", i+1, d.ID, d.Description)
	}
	list := strings.TrimRight(b.String(), "\n")
	if isEdit {
		return fmt.Sprintf(resolveEditSystemPrompt, formatDay(today), list)
	}
	return fmt.Sprintf(resolveDeleteSystemPrompt, formatDay(today), list)
}

func buildQuerySystemPrompt(activityContext []string, today time.Time) string {
	list := "(no activities scheduled)"
	if len(activityContext) > 0 {
		list = strings.Join(activityContext, "\n")
	}
	return fmt.Sprintf(querySystemPrompt, formatDay(today), list)
}

func buildPrepTasksUserPrompt(title string) string {
	return "Activity/Appointment: " + title + "\n\nSuggest 3-5 prep tasks. Return ONLY the JSON array."
}

func buildRecommendUserPrompt(req RecommendRequest) string {
	family := "children"
	if len(req.MemberNames) > 0 {
		family = strings.Join(req.MemberNames, ", ")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\nKids: %s\n", req.Location, family)
	if req.Preferences != "" {
		fmt.Fprintf(&b, "Preferences: %s\n", req.Preferences)
	}
	b.WriteString("\nSuggest kid-friendly activities for this location.")
	return b.String()
}

// activityContextLine renders one activity for the query prompt.
func activityContextLine(a domain.Activity, memberName string) string {
	if memberName == "" {
		memberName = "unassigned"
	}
	loc := a.Location
	if loc == "" {
		loc = "-"
	}
	return fmt.Sprintf("- ID: %s | %s | member: %s | %s %s | location: %s | type: %s | assignee: %s",
		a.ID, a.Title, memberName, a.Date, a.Time, loc, a.Type, a.Assignee)
}

func formatDay(t time.Time) string {
	return t.Format(domain.DateLayout) + " (" + t.Weekday().String() + ")"
}
