package repository

import (
	"database/sql"
	"encoding/json"
	"time"
)

// nullableInt converts a sql.NullInt64 into a *int.
func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// nullableIntToValue converts a *int to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableIntToValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableString stores "" as SQL NULL, for optional foreign keys.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime tolerates malformed timestamps by returning the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTasks(tasks []string) (string, error) {
	if tasks == nil {
		tasks = []string{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeTasks(s string) []string {
	var tasks []string
	if err := json.Unmarshal([]byte(s), &tasks); err != nil || len(tasks) == 0 {
		return nil
	}
	return tasks
}
