package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/cli/formatter"
	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/spf13/cobra"
)

func newAskCmd(app *App) *cobra.Command {
	var (
		today string
		yes   bool
	)
	cmd := &cobra.Command{
		Use:   `ask "<instruction>"`,
		Short: "Add, change, remove or look up activities in plain English",
		Example: `  famcoord ask "Soccer for Emma tomorrow at 3pm"
  famcoord ask "Move Liam's piano to 5pm"
  famcoord ask "What does Emma have this week?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Commands == nil {
				return fmt.Errorf("natural language input is disabled\n" +
					"Enable with: FAMCOORD_LLM_ENABLED=true FAMCOORD_FEATURE_NATURAL_LANGUAGE=true")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			req := service.InterpretRequest{Text: strings.Join(args, " ")}
			if today != "" {
				t, err := time.ParseInLocation(domain.DateLayout, today, app.today().Location())
				if err != nil {
					return fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", today)
				}
				req.Today = t
			}

			stop := app.busy(cmd.ErrOrStderr(), "Reading your instruction")
			outcome, err := app.Commands.Interpret(ctx, req)
			stop()
			if err != nil {
				return explainInterpretError(err)
			}

			members, err := app.Members.List(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatOutcome(outcome, members))

			if !intelligence.IsWriteAction(outcome.Command.Action) {
				return nil
			}
			switch outcome.State {
			case intelligence.StateNeedsClarification:
				return nil
			case intelligence.StateNeedsConfirmation:
				if !yes {
					ok, err := confirm(app, out, "Apply this change?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Cancelled.")
						return nil
					}
				}
			}

			res, err := app.Commands.Apply(ctx, outcome.Command)
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}
			fmt.Fprint(out, formatter.FormatApplyResult(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "reference date for relative dates (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply without asking for confirmation")
	return cmd
}

func explainInterpretError(err error) error {
	if errors.Is(err, llm.ErrTimeout) {
		return fmt.Errorf("%w (raise FAMCOORD_LLM_TIMEOUT_MS, e.g. 20000)", err)
	}
	if intelligence.HasCode(err, intelligence.CodeUnknownAction) {
		return fmt.Errorf("%w. Say whether to add, change, remove or look up an activity", err)
	}
	if ie, ok := intelligence.AsInterpretError(err); ok {
		switch ie.Code {
		case intelligence.CodeMemberNotFound:
			return fmt.Errorf("no member named %q. Known members: %s", ie.AttemptedName, strings.Join(ie.Roster, ", "))
		case intelligence.CodeActivityNotFound:
			return fmt.Errorf("%s. %s", ie.Message, ie.Suggestion)
		}
	}
	return err
}
