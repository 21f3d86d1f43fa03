package calsync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/famcoord/famcoord/internal/domain"
)

// CalDAVPublisher writes activities into a CalDAV calendar collection, one
// calendar object per activity, so republishing overwrites in place.
type CalDAVPublisher struct {
	client       *caldav.Client
	calendarPath string
	exporter     *Exporter
	logger       *slog.Logger
}

// CalDAVOptions locates the server and collection.
type CalDAVOptions struct {
	Endpoint string
	Username string
	Password string
	// Calendar is matched against collection names; empty picks the first.
	Calendar string
	// CalendarPath skips discovery when set.
	CalendarPath string
	HTTPClient   *http.Client
}

// NewCalDAVPublisher connects to the server and resolves the target
// collection.
func NewCalDAVPublisher(ctx context.Context, opts CalDAVOptions, loc *time.Location, logger *slog.Logger) (*CalDAVPublisher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	var hc webdav.HTTPClient = httpClient
	if opts.Username != "" {
		hc = webdav.HTTPClientWithBasicAuth(httpClient, opts.Username, opts.Password)
	}

	client, err := caldav.NewClient(hc, opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	p := &CalDAVPublisher{client: client, exporter: NewExporter(loc), logger: logger}

	p.calendarPath = opts.CalendarPath
	if p.calendarPath == "" {
		logger.Info("finding caldav calendar", "calendar", opts.Calendar)
		p.calendarPath, err = p.findCalendar(ctx, opts.Calendar)
		if err != nil {
			return nil, fmt.Errorf("could not find calendar %q: %w", opts.Calendar, err)
		}
	}
	return p, nil
}

func (p *CalDAVPublisher) findCalendar(ctx context.Context, name string) (string, error) {
	principal, err := p.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}
	homeSet, err := p.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	calendars, err := p.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	for _, cal := range calendars {
		if name == "" || cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar named %q", name)
}

// Publish uploads every activity and returns how many were written. It stops
// at the first failure.
func (p *CalDAVPublisher) Publish(ctx context.Context, activities []domain.Activity, members []domain.Member) (int, error) {
	published := 0
	for _, a := range activities {
		ev, err := p.exporter.Event(a, members)
		if err != nil {
			return published, err
		}
		cal := newCalendar()
		cal.Children = append(cal.Children, ev.Component)

		objectPath := ObjectPath(p.calendarPath, a.ID)
		if _, err := p.client.PutCalendarObject(ctx, objectPath, cal); err != nil {
			return published, fmt.Errorf("failed to publish %q: %w", a.Title, err)
		}
		published++
		p.logger.Debug("published activity", "title", a.Title, "path", objectPath)
	}
	p.logger.Info("published activities to caldav", "count", published, "calendar", p.calendarPath)
	return published, nil
}

// ObjectPath is where an activity lives inside the collection.
func ObjectPath(calendarPath, activityID string) string {
	return path.Join(calendarPath, activityID+".ics")
}
