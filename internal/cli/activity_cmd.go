package cli

import (
	"fmt"
	"time"

	"github.com/famcoord/famcoord/internal/cli/formatter"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "List and remove scheduled activities",
	}
	cmd.AddCommand(newActivityListCmd(app), newActivityRemoveCmd(app))
	return cmd
}

func newActivityListCmd(app *App) *cobra.Command {
	var member, from, to string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List activities in date order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, d := range []string{from, to} {
				if d == "" {
					continue
				}
				if _, err := time.Parse(domain.DateLayout, d); err != nil {
					return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", d)
				}
			}

			members, err := app.Members.List(ctx)
			if err != nil {
				return err
			}
			filter := repository.ActivityFilter{From: from, To: to}
			if member != "" {
				m, ok := domain.FindMemberByName(members, member)
				if !ok {
					m, ok = domain.FindMemberByID(members, member)
				}
				if !ok {
					return fmt.Errorf("no member named %q", member)
				}
				filter.MemberID = m.ID
			}

			activities, err := app.Activities.List(ctx, filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivities(activities, members, app.today()))
			return nil
		},
	}
	cmd.Flags().StringVar(&member, "member", "", "only this member's activities (name or id)")
	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")
	return cmd
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove an activity by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Activities.Remove(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("removing activity %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔ Removed"), args[0])
			return nil
		},
	}
}
