package calsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleSource reads events from one Google calendar.
type GoogleSource struct {
	service    *calendar.Service
	calendarID string
	loc        *time.Location
	logger     *slog.Logger
}

// NewGoogleSource creates a source for calendarID. Pass GoogleAuth (or
// option.WithHTTPClient and option.WithEndpoint in tests) to reach the API.
func NewGoogleSource(ctx context.Context, calendarID string, loc *time.Location, logger *slog.Logger, opts ...option.ClientOption) (*GoogleSource, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GoogleSource{service: service, calendarID: calendarID, loc: loc, logger: logger}, nil
}

// GoogleAuth builds an authenticated client option from an OAuth client
// credentials file and a previously saved token file.
func GoogleAuth(ctx context.Context, credentialsFile, tokenFile string) (option.ClientOption, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token from %s: %w", tokenFile, err)
	}
	return option.WithHTTPClient(config.Client(ctx, token)), nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func (g *GoogleSource) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	g.logger.Debug("fetching calendar events", "calendarID", g.calendarID, "from", from, "to", to)

	var out []Event
	call := g.service.Events.List(g.calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		OrderBy("startTime")
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			ev, ok := g.toEvent(item)
			if !ok {
				g.logger.Warn("skipping calendar event without a start", "id", item.Id)
				continue
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}
	g.logger.Info("fetched calendar events", "count", len(out), "calendarID", g.calendarID)
	return out, nil
}

func (g *GoogleSource) toEvent(item *calendar.Event) (Event, bool) {
	if item.Start == nil {
		return Event{}, false
	}
	ev := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}
	switch {
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, false
		}
		ev.Start = start.In(g.loc)
	case item.Start.Date != "":
		start, err := time.ParseInLocation(domain.DateLayout, item.Start.Date, g.loc)
		if err != nil {
			return Event{}, false
		}
		ev.Start = start
		ev.AllDay = true
	default:
		return Event{}, false
	}
	return ev, true
}
