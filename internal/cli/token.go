package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"dayflow/internal/auth"
)

// NewTokenCommand groups token subcommands.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(rootOpts))
	return cmd
}

func newTokenIssueCommand(rootOpts *RootOptions) *cobra.Command {
	var owner, role string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access and refresh token for an owner",
		Long: `Issue signs tokens with JWT_SIGNING_KEY and JWT_ISSUER from the
environment. The owner becomes the token subject, which every /api route
uses as the caller identity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.LoadConfig()
			pair, err := auth.Issue(owner, role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), rootOpts.Format, pair, func(w io.Writer) {
				fmt.Fprintf(w, "access_token:  %s\n", pair.AccessToken)
				fmt.Fprintf(w, "refresh_token: %s\n", pair.RefreshToken)
				fmt.Fprintf(w, "expires_at:    %s\n", pair.AccessExp.UTC().Format(time.RFC3339))
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (token subject)")
	cmd.Flags().StringVar(&role, "role", auth.DefaultRole, "role claim")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
