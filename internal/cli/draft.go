package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/comment"
)

// DraftOptions holds flags for the draft command.
type DraftOptions struct {
	*RootOptions
	Author string
	Text   string
	Clear  bool
}

// NewDraftCommand creates the draft command.
func NewDraftCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DraftOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Show, save or discard the unfinished post",
		Long: `Keep an unfinished post between runs.

Without flags the saved draft is shown. --author and --text update it;
--clear discards it. A successful post discards the draft too, and
"post" uses the draft author when --author is omitted.

Example:
  threadboard draft --author Ann --text "Half a thought"
  threadboard draft`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Author, "author", "a", "", "draft author")
	cmd.Flags().StringVarP(&opts.Text, "text", "t", "", "draft text")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "discard the draft")

	return cmd
}

func runDraft(cmd *cobra.Command, opts *DraftOptions) error {
	s, err := openSession(cmd, opts.RootOptions, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := commandContext(cmd)

	d := s.svc.Draft(ctx)
	switch {
	case opts.Clear:
		if err := s.svc.ClearDraft(ctx); err != nil {
			return s.out.Fail("draft not cleared", err, s.events())
		}
		d = comment.Draft{}
	case cmd.Flags().Changed("author") || cmd.Flags().Changed("text"):
		if cmd.Flags().Changed("author") {
			d.UserName = opts.Author
		}
		if cmd.Flags().Changed("text") {
			d.CommentText = opts.Text
		}
		if err := s.svc.SaveDraft(ctx, d); err != nil {
			return s.out.Fail("draft not saved", err, s.events())
		}
	}

	text := "No draft.\n"
	if !d.IsZero() {
		text = fmt.Sprintf("Author: %s\nText:   %s\n", d.UserName, d.CommentText)
	}
	return s.out.Success(d, text, s.events())
}
