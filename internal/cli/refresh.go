package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "refresh",
		Short:         "Reload the board from the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			s.svc.Refresh(commandContext(cmd))
			st := s.svc.Stats(rootOpts.now())
			var b strings.Builder
			renderStats(&b, st)
			return s.out.Success(st, b.String(), s.events())
		},
	}
	return cmd
}
