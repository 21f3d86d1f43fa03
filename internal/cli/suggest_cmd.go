package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/famcoord/famcoord/internal/cli/formatter"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/spf13/cobra"
)

var errLLMDisabled = errors.New("LLM features are disabled. Enable with: FAMCOORD_LLM_ENABLED=true")

func newPrepCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   `prep "<activity title>"`,
		Short: "Suggest prep tasks for an activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.PrepTasks == nil {
				return errLLMDisabled
			}
			title := strings.Join(args, " ")
			stop := app.busy(cmd.ErrOrStderr(), "Thinking of prep tasks")
			tasks, err := app.PrepTasks.Suggest(cmd.Context(), title)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPrepTasks(title, tasks))
			return nil
		},
	}
}

func newRecommendCmd(app *App) *cobra.Command {
	var (
		location    string
		preferences string
		names       []string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest activities near a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Recommend == nil {
				return errLLMDisabled
			}
			ctx := cmd.Context()
			if len(names) == 0 {
				members, err := app.Members.List(ctx)
				if err != nil {
					return err
				}
				names = domain.MemberNames(members)
			}
			stop := app.busy(cmd.ErrOrStderr(), "Looking for ideas near "+location)
			recs, err := app.Recommend.Recommend(ctx, intelligence.RecommendRequest{
				Location:    location,
				MemberNames: names,
				Preferences: preferences,
			})
			stop()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecommendations(location, recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "city or neighborhood (required)")
	cmd.Flags().StringVar(&preferences, "prefs", "", "interests, budget or other preferences")
	cmd.Flags().StringSliceVar(&names, "member", nil, "member names to plan for (default: whole roster)")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}
