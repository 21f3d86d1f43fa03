package calsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/famcoord/famcoord/internal/db"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/repository"
)

const (
	// DefaultWindowDays is how far ahead an import looks.
	DefaultWindowDays = 30

	// ImportedBy marks activities created from calendar events.
	ImportedBy = "Calendar Import"

	untimedEventTime = "12:00"
)

// ImportOptions controls one import run.
type ImportOptions struct {
	Days   int
	DryRun bool
}

// ImportResult summarizes an import run. Activities holds what was (or, in
// a dry run, would have been) created.
type ImportResult struct {
	Imported   int               `json:"imported"`
	Skipped    int               `json:"skipped"`
	Duplicates int               `json:"duplicates"`
	Total      int               `json:"total"`
	Activities []domain.Activity `json:"activities,omitempty"`
}

// Importer turns upcoming calendar events into activities. Events that
// mention no roster member are skipped; events already imported are counted
// as duplicates.
type Importer struct {
	source  EventSource
	members repository.MemberRepo
	uow     db.UnitOfWork
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

func NewImporter(source EventSource, members repository.MemberRepo, uow db.UnitOfWork, loc *time.Location, logger *slog.Logger) *Importer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{source: source, members: members, uow: uow, loc: loc, now: time.Now, logger: logger}
}

func (im *Importer) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	if opts.Days <= 0 {
		opts.Days = DefaultWindowDays
	}
	from := im.now().In(im.loc)
	to := from.AddDate(0, 0, opts.Days)

	events, err := im.source.Events(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}
	roster, err := im.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}

	result := &ImportResult{Total: len(events)}
	err = im.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		activities := repository.NewSQLiteActivityRepo(tx)
		for _, ev := range events {
			member, ok := GuessMember(ev.Title, roster)
			if !ok {
				result.Skipped++
				im.logger.Info("skipped calendar event: no member match", "title", ev.Title)
				continue
			}
			if ev.ID != "" {
				_, err := activities.GetByCalendarEventID(ctx, ev.ID)
				if err == nil {
					result.Duplicates++
					im.logger.Info("skipped calendar event: already imported", "title", ev.Title, "eventID", ev.ID)
					continue
				}
				if !errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("checking event %s: %w", ev.ID, err)
				}
			}

			a := im.toActivity(ev, member.ID)
			if err := activities.Create(ctx, &a); err != nil {
				return fmt.Errorf("importing event %q: %w", ev.Title, err)
			}
			result.Imported++
			result.Activities = append(result.Activities, a)
		}
		if opts.DryRun {
			return db.ErrRollback
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("calendar import finished",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"total", result.Total,
		"dryRun", opts.DryRun,
	)
	return result, nil
}

func (im *Importer) toActivity(ev Event, memberID string) domain.Activity {
	title := ev.Title
	if title == "" {
		title = "Untitled Event"
	}
	start := ev.Start.In(im.loc)
	clock := start.Format(domain.TimeLayout)
	if ev.AllDay {
		clock = untimedEventTime
	}
	now := im.now().UTC()
	return domain.Activity{
		ID:              repository.NewActivityID(),
		MemberID:        memberID,
		Title:           title,
		Date:            start.Format(domain.DateLayout),
		Time:            clock,
		Location:        ev.Location,
		Notes:           ev.Description,
		Type:            GuessType(title),
		Assignee:        domain.AssigneeMom,
		Category:        domain.InferCategory(title),
		DurationMin:     domain.DefaultDurationMin,
		CreatedBy:       ImportedBy,
		CalendarEventID: ev.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
