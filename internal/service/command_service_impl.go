package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/famcoord/famcoord/internal/db"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/repository"
)

// ErrNaturalLanguageDisabled is returned by Interpret when the feature flag
// is off.
var ErrNaturalLanguageDisabled = errors.New("natural language input is disabled")

// ErrNothingToApply is returned for commands that carry no write.
var ErrNothingToApply = errors.New("command has nothing to apply")

// CommandOptions tunes a CommandService.
type CommandOptions struct {
	Enabled     bool
	Policy      intelligence.ConfirmationPolicy
	DurationMin int
	Location    *time.Location
	// PrepTasks, when set, fills in prep tasks for newly added activities.
	PrepTasks intelligence.PrepTaskService
	Now       func() time.Time
	Logger    *slog.Logger
}

type commandService struct {
	interpreter *intelligence.Interpreter
	snapshot    SnapshotProvider
	uow         db.UnitOfWork
	opts        CommandOptions
	observer    UseCaseObserver
}

func NewCommandService(
	interpreter *intelligence.Interpreter,
	snapshot SnapshotProvider,
	uow db.UnitOfWork,
	opts CommandOptions,
	observers ...UseCaseObserver,
) CommandService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DurationMin <= 0 {
		opts.DurationMin = domain.DefaultDurationMin
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &commandService{
		interpreter: interpreter,
		snapshot:    snapshot,
		uow:         uow,
		opts:        opts,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *commandService) Interpret(ctx context.Context, req InterpretRequest) (outcome *Outcome, err error) {
	start := time.Now()
	fields := map[string]any{}
	defer func() {
		observe(ctx, s.observer, "command.interpret", start, err, fields)
	}()

	if !s.opts.Enabled {
		return nil, ErrNaturalLanguageDisabled
	}

	today := req.Today
	if today.IsZero() {
		today = s.opts.Now().In(s.opts.Location)
	}

	members, activities := req.Members, req.Activities
	if members == nil || activities == nil {
		snap, err := s.snapshot.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		if members == nil {
			members = snap.Members
		}
		if activities == nil {
			activities = snap.Activities
		}
	}

	cmd, err := s.interpreter.Interpret(ctx, intelligence.Request{
		Text:       req.Text,
		Members:    members,
		Activities: activities,
		Today:      today,
	})
	if err != nil {
		if ie, ok := intelligence.AsInterpretError(err); ok {
			fields["code"] = string(ie.Code)
		}
		return nil, err
	}

	state := s.opts.Policy.Evaluate(cmd)
	fields["action"] = string(cmd.Action)
	fields["confidence"] = string(cmd.Confidence)
	fields["state"] = string(state)
	return &Outcome{Command: cmd, State: state}, nil
}

// Apply performs the write described by cmd inside one transaction.
// Queries are read-only and return ErrNothingToApply.
func (s *commandService) Apply(ctx context.Context, cmd *intelligence.Command) (result *ApplyResult, err error) {
	start := time.Now()
	fields := map[string]any{}
	defer func() {
		observe(ctx, s.observer, "command.apply", start, err, fields)
	}()

	if cmd == nil || !intelligence.IsWriteAction(cmd.Action) {
		return nil, ErrNothingToApply
	}
	fields["action"] = string(cmd.Action)

	var prep []string
	if cmd.Action == intelligence.ActionAdd && cmd.Add != nil {
		prep = s.suggestPrepTasks(ctx, cmd.Add.Title)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		activities := repository.NewSQLiteActivityRepo(tx)
		members := repository.NewSQLiteMemberRepo(tx)
		switch cmd.Action {
		case intelligence.ActionAdd:
			if cmd.Add != nil {
				if err := requireMember(ctx, members, cmd.Add.MemberID); err != nil {
					return err
				}
			}
			result, err = s.applyAdd(ctx, activities, cmd.Add, prep)
		case intelligence.ActionEdit:
			if cmd.Edit != nil && cmd.Edit.Changes.MemberID != nil {
				if err := requireMember(ctx, members, *cmd.Edit.Changes.MemberID); err != nil {
					return err
				}
			}
			result, err = s.applyEdit(ctx, activities, cmd.Edit)
		case intelligence.ActionDelete:
			result, err = s.applyDelete(ctx, activities, cmd.Delete)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Activity != nil {
		fields["activity_id"] = result.Activity.ID
	}
	return result, nil
}

func (s *commandService) applyAdd(ctx context.Context, repo repository.ActivityRepo, p *intelligence.AddPayload, prep []string) (*ApplyResult, error) {
	if p == nil {
		return nil, fmt.Errorf("add: %w", ErrNothingToApply)
	}
	now := s.opts.Now().UTC()
	a := &domain.Activity{
		ID:          repository.NewActivityID(),
		MemberID:    p.MemberID,
		Title:       p.Title,
		Date:        p.Date,
		Time:        p.Time,
		Location:    p.Location,
		Type:        p.Type,
		Assignee:    p.Assignee,
		Category:    p.Category,
		Notes:       p.Notes,
		DurationMin: s.opts.DurationMin,
		PrepTasks:   prep,
		CreatedBy:   "Natural Language",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return &ApplyResult{Action: intelligence.ActionAdd, Activity: a}, nil
}

func (s *commandService) applyEdit(ctx context.Context, repo repository.ActivityRepo, p *intelligence.EditPayload) (*ApplyResult, error) {
	if p == nil {
		return nil, fmt.Errorf("edit: %w", ErrNothingToApply)
	}
	a, err := repo.GetByID(ctx, p.ActivityID)
	if err != nil {
		return nil, err
	}
	if p.Changes.IsEmpty() {
		return &ApplyResult{Action: intelligence.ActionEdit, Activity: a}, nil
	}
	p.Changes.ApplyTo(a)
	a.UpdatedAt = s.opts.Now().UTC()
	if err := repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return &ApplyResult{Action: intelligence.ActionEdit, Activity: a}, nil
}

func (s *commandService) applyDelete(ctx context.Context, repo repository.ActivityRepo, p *intelligence.DeletePayload) (*ApplyResult, error) {
	if p == nil {
		return nil, fmt.Errorf("delete: %w", ErrNothingToApply)
	}
	if err := repo.Delete(ctx, p.ActivityID); err != nil {
		return nil, err
	}
	return &ApplyResult{Action: intelligence.ActionDelete, DeletedID: p.ActivityID}, nil
}

// requireMember checks an assignment against the stored roster, which may
// differ from the roster the command was interpreted against. An empty id
// leaves the activity unassigned.
func requireMember(ctx context.Context, members repository.MemberRepo, id string) error {
	if id == "" {
		return nil
	}
	if _, err := members.GetByID(ctx, id); err != nil {
		return fmt.Errorf("assigning %s: %w", id, err)
	}
	return nil
}

// suggestPrepTasks never fails the add; a suggestion error only gets logged.
func (s *commandService) suggestPrepTasks(ctx context.Context, title string) []string {
	if s.opts.PrepTasks == nil {
		return nil
	}
	tasks, err := s.opts.PrepTasks.Suggest(ctx, title)
	if err != nil {
		s.opts.Logger.WarnContext(ctx, "prep task suggestion failed", "title", title, "error", err)
		return nil
	}
	return tasks
}
