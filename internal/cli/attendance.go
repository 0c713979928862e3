package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dayflow/internal/app"
)

// NewAttendanceCommand groups attendance administration.
func NewAttendanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Attendance administration",
	}
	cmd.AddCommand(newAttendanceResetCommand(rootOpts))
	return cmd
}

func newAttendanceResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every attendance record",
		Long: `Reset removes all attendance records from the configured backend so
every owner starts from "Not Marked". Leave, payroll and profile data are
left alone. Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset attendance without --yes")
			}
			return withStores(cmd.Context(), rootOpts, func(ctx context.Context, s *app.Stores) error {
				n, err := s.Attendance.Reset(ctx)
				if err != nil {
					return fmt.Errorf("reset attendance: %w", err)
				}
				return emit(cmd.OutOrStdout(), rootOpts.Format, map[string]any{"deleted": n}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted %d attendance record(s)\n", n)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
