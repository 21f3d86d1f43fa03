package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/famcoord/famcoord/internal/calsync"
	"github.com/famcoord/famcoord/internal/cli/formatter"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/spf13/cobra"
)

// CalendarImporter pulls calendar events into the store.
type CalendarImporter interface {
	Import(ctx context.Context, opts calsync.ImportOptions) (*calsync.ImportResult, error)
}

// CalendarPublisher pushes stored activities to a remote calendar.
type CalendarPublisher interface {
	Publish(ctx context.Context, activities []domain.Activity, members []domain.Member) (int, error)
}

// App holds references to all services used by CLI commands. Commands is
// nil when natural-language input is disabled.
type App struct {
	Commands   service.CommandService
	Members    service.MemberService
	Activities service.ActivityService
	PrepTasks  intelligence.PrepTaskService
	Recommend  intelligence.RecommendService
	Exporter   *calsync.Exporter

	// Remote calendars connect on first use so missing credentials only
	// fail the commands that need them.
	ConnectGoogle func(ctx context.Context) (CalendarImporter, error)
	ConnectCalDAV func(ctx context.Context) (CalendarPublisher, error)
	SyncDays      int

	Serve       func(ctx context.Context, addr string) error
	DefaultAddr string

	Location      *time.Location
	Now           func() time.Time
	IsInteractive func() bool
	// In is read for confirmations when stdin is not a terminal.
	In io.Reader
}

func (a *App) today() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (a *App) input() io.Reader {
	if a.In != nil {
		return a.In
	}
	return os.Stdin
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// busy shows a spinner on w while a model call runs. Non-terminals get no
// animation.
func (a *App) busy(w io.Writer, message string) func() {
	if !a.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(w, message)
}

// NewRootCmd creates the top-level "famcoord" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "famcoord",
		Short:         "Family activity coordinator",
		Long:          "Keep track of the family's activities and edit the schedule in plain English.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAskCmd(app),
		newMemberCmd(app),
		newActivityCmd(app),
		newPrepCmd(app),
		newRecommendCmd(app),
		newSyncCmd(app),
		newExportCmd(app),
		newServeCmd(app),
	)

	return root
}
