package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/famcoord/famcoord/internal/calsync"
	"github.com/famcoord/famcoord/internal/cli/formatter"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import activities from external calendars",
	}
	cmd.AddCommand(newSyncGoogleCmd(app))
	return cmd
}

func newSyncGoogleCmd(app *App) *cobra.Command {
	var opts calsync.ImportOptions
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Import upcoming Google Calendar events that mention a family member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.ConnectGoogle == nil {
				return errors.New("google calendar is not configured (set FAMCOORD_GOOGLE_CREDENTIALS_FILE and FAMCOORD_GOOGLE_TOKEN_FILE)")
			}
			ctx := cmd.Context()
			importer, err := app.ConnectGoogle(ctx)
			if err != nil {
				return err
			}
			res, err := importer.Import(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res, opts.DryRun))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show what would be imported without saving")
	days := app.SyncDays
	if days <= 0 {
		days = calsync.DefaultWindowDays
	}
	cmd.Flags().IntVar(&opts.Days, "days", days, "how many days ahead to look")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities to calendar formats",
	}
	cmd.AddCommand(newExportICSCmd(app), newExportCalDAVCmd(app))
	return cmd
}

func newExportICSCmd(app *App) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write all activities as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			members, err := app.Members.List(ctx)
			if err != nil {
				return err
			}
			activities, err := app.Activities.List(ctx, repository.ActivityFilter{})
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			if err := app.Exporter.Encode(w, activities, members); err != nil {
				return err
			}
			if outPath != "" && outPath != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d activities to %s\n",
					formatter.StyleGreen.Render("✔ Exported"), len(activities), outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func newExportCalDAVCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "caldav",
		Short: "Publish all activities to the configured CalDAV calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.ConnectCalDAV == nil {
				return errors.New("caldav is not configured (set FAMCOORD_CALDAV_URL)")
			}
			ctx := cmd.Context()
			members, err := app.Members.List(ctx)
			if err != nil {
				return err
			}
			activities, err := app.Activities.List(ctx, repository.ActivityFilter{})
			if err != nil {
				return err
			}
			publisher, err := app.ConnectCalDAV(ctx)
			if err != nil {
				return err
			}
			n, err := publisher.Publish(ctx, activities, members)
			if err != nil {
				return fmt.Errorf("published %d of %d: %w", n, len(activities), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d activities\n", formatter.StyleGreen.Render("✔ Published"), n)
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("http server is not available")
			}
			if addr == "" {
				addr = app.DefaultAddr
			}
			return app.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
