package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/repository"
)

// UseCaseEvent is one completed service call. Rejected marks failures caused
// by the request itself, such as an unknown member or a duplicate name, as
// opposed to faults.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Rejected  bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver logs each use case as a "service_use_case" record:
// info on success, warn when rejected, error otherwise.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]slog.Attr, 0, 4+len(event.Fields))
	attrs = append(attrs,
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success),
	)
	for k, v := range event.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}

	level := slog.LevelInfo
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		level = slog.LevelError
		if event.Rejected {
			level = slog.LevelWarn
		}
	}
	o.logger.LogAttrs(ctx, level, "service_use_case", attrs...)
}

// multiObserver fans an event out to several observers.
type multiObserver []UseCaseObserver

func (m multiObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range m {
		obs.ObserveUseCase(ctx, event)
	}
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live multiObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}

// observe reports one use case run that started at start.
func observe(ctx context.Context, obs UseCaseObserver, name string, start time.Time, err error, fields map[string]any) {
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(start),
		Success:   err == nil,
		Rejected:  isRejection(err),
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
}

func isRejection(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := intelligence.AsInterpretError(err); ok {
		return true
	}
	for _, target := range []error{
		repository.ErrNotFound,
		ErrMemberExists,
		ErrMemberNameRequired,
		ErrNothingToApply,
		ErrNaturalLanguageDisabled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
