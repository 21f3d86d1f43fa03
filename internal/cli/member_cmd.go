package cli

import (
	"fmt"
	"strings"

	"github.com/famcoord/famcoord/internal/cli/formatter"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/spf13/cobra"
)

func newMemberCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "member",
		Aliases: []string{"members"},
		Short:   "Manage the household roster",
	}
	cmd.AddCommand(newMemberAddCmd(app), newMemberListCmd(app), newMemberRemoveCmd(app))
	return cmd
}

func newMemberAddCmd(app *App) *cobra.Command {
	var (
		age   int
		color string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a family member",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := &domain.Member{Name: strings.Join(args, " "), Color: color}
			if cmd.Flags().Changed("age") {
				m.Age = &age
			}
			if err := app.Members.Add(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				formatter.StyleGreen.Render("✔ Added"), formatter.Bold(m.Name), formatter.TruncID(m.ID))
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func newMemberListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List family members",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app.Members.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMembers(members))
			return nil
		},
	}
}

func newMemberRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id-or-name>",
		Aliases: []string{"remove"},
		Short:   "Remove a family member; their activities become unassigned",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.Members.Remove(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("removing member %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔ Removed"), formatter.Bold(m.Name))
			return nil
		},
	}
}
