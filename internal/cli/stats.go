package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/board"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show comment counts and last activity",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			st := s.svc.Stats(rootOpts.now())
			var b strings.Builder
			renderStats(&b, st)
			return s.out.Success(st, b.String(), s.events())
		},
	}
	return cmd
}

func renderStats(w io.Writer, st board.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Total Comments", "Unique Authors", "Replies", "Last Activity"})
	table.Append([]string{
		strconv.Itoa(st.Total),
		strconv.Itoa(st.UniqueAuthors),
		strconv.Itoa(st.Replies),
		st.LastActivity,
	})
	table.Render()
}
