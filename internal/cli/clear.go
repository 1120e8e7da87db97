package cli

import (
	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every comment",
		Long: `Delete every comment and reply from the board. This cannot be undone,
so --yes is required.

Example:
  threadboard clear --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "refusing to clear all comments without --yes")
			}
			s, err := openSession(cmd, opts.RootOptions, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.ClearAll(commandContext(cmd)); err != nil {
				return s.out.Fail("clear failed", err, s.events())
			}
			return s.out.Success(map[string]int{"total": 0}, "", s.events())
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deleting all comments")

	return cmd
}
