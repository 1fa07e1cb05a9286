package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"eventrsvp/internal/adapters/auth"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Subject string
	TTL     time.Duration
}

// TokenResult is the JSON output of the token command.
type TokenResult struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the RSVP admin API",
		Long: `Sign a token with API_JWT_SECRET for use as "Authorization: Bearer <token>".

Examples:
  rsvpbot token --subject alice --ttl 8h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireJWT(); err != nil {
				return WrapExitError(ExitCommandError, "cannot issue token", err)
			}
			if opts.TTL <= 0 {
				return WrapExitError(ExitCommandError, "invalid --ttl", fmt.Errorf("must be positive, got %s", opts.TTL))
			}

			token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(opts.Subject, opts.TTL)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to sign token", err)
			}
			result := TokenResult{
				Token:     token,
				Subject:   opts.Subject,
				ExpiresAt: time.Now().Add(opts.TTL).UTC().Truncate(time.Second),
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, result.Token)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", "operator", "who the token is issued to")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
