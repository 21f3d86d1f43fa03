package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/famcoord/famcoord/internal/domain"
)

// Migrate runs all schema migrations. Statements are re-run on every open,
// so each one must be idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillCategories(db); err != nil {
		return fmt.Errorf("backfilling activity categories: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL COLLATE NOCASE,
		age        INTEGER,
		color      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_name ON members(name COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id         TEXT PRIMARY KEY,
		member_id  TEXT REFERENCES members(id) ON DELETE SET NULL,
		title      TEXT NOT NULL,
		date       TEXT NOT NULL,
		time       TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		type       TEXT NOT NULL DEFAULT 'Pick Up'
		           CHECK(type IN ('Pick Up','Drop Off','Other')),
		assignee   TEXT NOT NULL DEFAULT 'Mom'
		           CHECK(assignee IN ('Mom','Dad','Both')),
		category   TEXT NOT NULL DEFAULT ''
		           CHECK(category IN ('','Physical','Social','Creative','Academic','Other')),
		notes      TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_member ON activities(member_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date, time)`,

	// Added with prep-task suggestions and calendar import.
	`ALTER TABLE activities ADD COLUMN duration_min INTEGER NOT NULL DEFAULT 60`,
	`ALTER TABLE activities ADD COLUMN prep_tasks TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE activities ADD COLUMN calendar_event_id TEXT NOT NULL DEFAULT ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_calendar_event
		ON activities(calendar_event_id) WHERE calendar_event_id != ''`,
}

// migrateBackfillCategories fills in the category of rows stored before
// categories were required, inferring it from the title. Rows that already
// have a category are left alone.
func migrateBackfillCategories(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT id, title FROM activities WHERE category = ''`)
	if err != nil {
		return fmt.Errorf("listing uncategorized activities: %w", err)
	}
	type pending struct{ id, title string }
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.title); err != nil {
			rows.Close()
			return fmt.Errorf("scanning activity: %w", err)
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, p := range todo {
		if _, err := db.ExecContext(ctx,
			`UPDATE activities SET category = ? WHERE id = ? AND category = ''`,
			string(domain.InferCategory(p.title)), p.id); err != nil {
			return fmt.Errorf("updating activity %s: %w", p.id, err)
		}
	}
	return nil
}
