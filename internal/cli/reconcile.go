package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventrsvp/internal/domain"
	"eventrsvp/internal/repository/postgres"
	"eventrsvp/internal/services"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Text   string
	UserID string
	Emoji  string
	IsBot  bool
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply one reaction to the RSVP store",
		Long: `Run a single reaction through the same pipeline the bot uses and print
the outcome. Useful for replaying a reaction the bot missed.

Exit codes:
  0 - The reaction was applied or skipped
  1 - The lookup or write failed
  2 - Command error (bad config, database unreachable, etc.)

Examples:
  rsvpbot reconcile --text "Game night event_id:42" --user 80351110224678912 --emoji ✅
  rsvpbot reconcile --text "event_id:42" --user 80351110224678912 --emoji ❌ --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg.DBUrl)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to connect to database", err)
			}
			defer db.Close()

			rec := services.NewReconciler(logger, postgres.NewMemberRepository(db), postgres.NewRSVPRepository(db))
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ReconcileTimeout)
			defer cancel()
			return runReconcile(ctx, rec, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "text of the reacted-to message (required)")
	cmd.Flags().StringVar(&opts.UserID, "user", "", "Discord user id of the reactor (required)")
	cmd.Flags().StringVar(&opts.Emoji, "emoji", "", "reaction symbol (required)")
	cmd.Flags().BoolVar(&opts.IsBot, "bot", false, "treat the reactor as a bot")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("emoji")

	return cmd
}

func runReconcile(ctx context.Context, rec domain.Reconciler, opts *ReconcileOptions, out io.Writer) error {
	res, err := rec.Reconcile(ctx, &domain.ReactionEvent{
		MessageText:  opts.Text,
		ReactorID:    opts.UserID,
		ReactorIsBot: opts.IsBot,
		Symbol:       opts.Emoji,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "reconcile failed", err)
	}
	return writeOutput(out, opts.Format, res, func(w io.Writer) error {
		if res.Outcome != domain.OutcomeApplied {
			_, err := fmt.Fprintf(w, "outcome=%s\n", res.Outcome)
			return err
		}
		_, err := fmt.Fprintf(w, "outcome=%s event_id=%s member_id=%s status=%s\n",
			res.Outcome, res.EventID, res.MemberID, res.Status)
		return err
	})
}
