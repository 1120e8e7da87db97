package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/board"
	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/tree"
)

// EmptyBoardMessage is printed by list when there are no comments.
const EmptyBoardMessage = "No comments yet. Be the first to start the discussion!"

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every thread",
		Long: `Show every comment and reply in insertion order, replies indented
under their parent.

Example:
  threadboard list
  threadboard list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			forest := s.svc.Forest()
			var b strings.Builder
			renderForest(&b, forest, rootOpts.now())
			return s.out.Success(forest, b.String(), s.events())
		},
	}
	return cmd
}

// renderForest writes the threads as indented text.
func renderForest(w io.Writer, f comment.Forest, now time.Time) {
	if len(f) == 0 {
		fmt.Fprintln(w, EmptyBoardMessage)
		return
	}
	tree.Walk(f, func(c comment.Comment, depth int) bool {
		indent := strings.Repeat("  ", depth)
		age := c.Timestamp
		if ts, err := c.Time(); err == nil {
			age = board.TimeAgo(ts, now)
		}
		fmt.Fprintf(w, "%s[%s] %s, %s\n", indent, c.ID, c.Author, age)
		for _, line := range strings.Split(c.Text, "\n") {
			fmt.Fprintf(w, "%s    %s\n", indent, line)
		}
		return true
	})
}
