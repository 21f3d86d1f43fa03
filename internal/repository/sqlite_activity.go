package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/famcoord/famcoord/internal/db"
	"github.com/famcoord/famcoord/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

const activityColumns = `id, member_id, title, date, time, location, type, assignee, category,
	notes, duration_min, prep_tasks, created_by, calendar_event_id, created_at, updated_at`

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	tasks, err := encodeTasks(a.PrepTasks)
	if err != nil {
		return fmt.Errorf("encoding prep tasks: %w", err)
	}
	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID,
		nullableString(a.MemberID),
		a.Title,
		a.Date,
		a.Time,
		a.Location,
		string(a.Type),
		string(a.Assignee),
		string(a.Category),
		a.Notes,
		a.DurationMin,
		tasks,
		a.CreatedBy,
		a.CalendarEventID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

// GetByCalendarEventID finds the activity imported from a calendar event.
func (r *SQLiteActivityRepo) GetByCalendarEventID(ctx context.Context, eventID string) (*domain.Activity, error) {
	if eventID == "" {
		return nil, fmt.Errorf("activity: %w", ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE calendar_event_id = ?`, eventID)
	return scanActivity(row)
}

// List returns matching activities ordered by start, then id.
func (r *SQLiteActivityRepo) List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error) {
	var (
		where []string
		args  []any
	)
	if filter.MemberID != "" {
		where = append(where, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if filter.From != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.To)
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, time, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

func (r *SQLiteActivityRepo) Update(ctx context.Context, a *domain.Activity) error {
	tasks, err := encodeTasks(a.PrepTasks)
	if err != nil {
		return fmt.Errorf("encoding prep tasks: %w", err)
	}
	query := `UPDATE activities SET member_id = ?, title = ?, date = ?, time = ?, location = ?,
		type = ?, assignee = ?, category = ?, notes = ?, duration_min = ?, prep_tasks = ?,
		calendar_event_id = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(a.MemberID),
		a.Title,
		a.Date,
		a.Time,
		a.Location,
		string(a.Type),
		string(a.Assignee),
		string(a.Category),
		a.Notes,
		a.DurationMin,
		tasks,
		a.CalendarEventID,
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return requireAffected(res, "activity "+a.ID)
}

func (r *SQLiteActivityRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return requireAffected(res, "activity "+id)
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		a                    domain.Activity
		memberID             sql.NullString
		typ, assignee, cat   string
		tasks                string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&a.ID,
		&memberID,
		&a.Title,
		&a.Date,
		&a.Time,
		&a.Location,
		&typ,
		&assignee,
		&cat,
		&a.Notes,
		&a.DurationMin,
		&tasks,
		&a.CreatedBy,
		&a.CalendarEventID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	a.MemberID = memberID.String
	a.Type = domain.ActivityType(typ)
	a.Assignee = domain.Assignee(assignee)
	a.Category = domain.Category(cat)
	a.PrepTasks = decodeTasks(tasks)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}
