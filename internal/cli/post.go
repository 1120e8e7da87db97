package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/board"
	"github.com/roach88/threadboard/internal/comment"
)

// PostOptions holds flags for the post and reply commands.
type PostOptions struct {
	*RootOptions
	Author string
	Text   string
}

// NewPostCommand creates the post command.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "post [text...]",
		Short: "Post a top-level comment",
		Long: `Post a new top-level comment.

The text is taken from --text or, if that is empty, from the remaining
arguments. Leading and trailing whitespace is removed; an empty author or
text is rejected.

Example:
  threadboard post --author Ann "Has anyone tried the new build?"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts, board.Submission{
				Author: opts.Author,
				Text:   textFrom(opts.Text, args),
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Author, "author", "a", "", "display name")
	cmd.Flags().StringVarP(&opts.Text, "text", "t", "", "comment text")

	return cmd
}

// NewReplyCommand creates the reply command.
func NewReplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reply <parent-id> [text...]",
		Short: "Reply to a comment or reply",
		Long: `Reply to an existing comment at any depth.

Ids are shown by "threadboard list". A reply to an id that does not exist
is rejected.

Example:
  threadboard reply 01928c3e-... --author Ben "Yes, works for me."`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts, board.Submission{
				Author:   opts.Author,
				Text:     textFrom(opts.Text, args[1:]),
				ParentID: args[0],
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Author, "author", "a", "", "display name")
	cmd.Flags().StringVarP(&opts.Text, "text", "t", "", "reply text")

	return cmd
}

func textFrom(flag string, args []string) string {
	if flag != "" {
		return flag
	}
	return strings.Join(args, " ")
}

func runSubmit(cmd *cobra.Command, opts *PostOptions, sub board.Submission) error {
	s, err := openSession(cmd, opts.RootOptions, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := commandContext(cmd)

	// An empty author falls back to the saved draft, like a prefilled form.
	if strings.TrimSpace(sub.Author) == "" {
		sub.Author = s.svc.Draft(ctx).UserName
	}

	if sub.ParentID != "" {
		if _, err := s.svc.ReplyTarget(sub.ParentID); err != nil {
			return s.out.Fail("reply rejected", err, s.events())
		}
	}

	c, err := s.svc.Submit(ctx, sub)
	if err != nil {
		return s.out.Fail("comment rejected", err, s.events())
	}

	return s.out.Success(c, formatPosted(c), s.events())
}

func formatPosted(c comment.Comment) string {
	if c.IsTopLevel() {
		return fmt.Sprintf("Posted %s by %s\n", c.ID, c.Author)
	}
	return fmt.Sprintf("Posted %s by %s in reply to %s\n", c.ID, c.Author, c.Parent())
}
