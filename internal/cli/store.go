package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dayflow/internal/app"
)

// NewStoreCommand groups storage maintenance.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Storage maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create unique indexes and tables for the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), rootOpts, func(ctx context.Context, s *app.Stores) error {
				if err := s.EnsureIndexes(ctx); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), rootOpts.Format, map[string]any{"backend": s.Backend, "ensured": true}, func(w io.Writer) {
					fmt.Fprintf(w, "indexes ensured on %s\n", s.Backend)
				})
			})
		},
	})
	return cmd
}

// withStores opens the configured backend for the duration of fn.
func withStores(ctx context.Context, rootOpts *RootOptions, fn func(context.Context, *app.Stores) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.OpenStores(ctx, rootOpts.LoadConfig())
	if err != nil {
		return err
	}
	defer s.Close(context.Background())
	return fn(ctx, s)
}
