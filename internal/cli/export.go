package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/threadboard/internal/board"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every comment to a JSON file",
		Long: `Write the whole board to a JSON document with the export date and the
total comment count.

The default file name is discussion-board-export-YYYY-MM-DD.json in the
current directory; "-o -" writes to standard output.

Example:
  threadboard export
  threadboard export -o backup.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (- for stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	s, err := openSession(cmd, opts.RootOptions, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	now := opts.now()
	var buf bytes.Buffer
	if err := s.svc.WriteExport(&buf, now); err != nil {
		return s.out.Fail("export failed", err, s.events())
	}

	if opts.Output == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	path := opts.Output
	if path == "" {
		path = board.ExportFilename(now)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write export", err)
	}
	s.out.VerboseLog("wrote %d bytes", buf.Len())
	return s.out.Success(map[string]string{"path": path}, fmt.Sprintf("Wrote %s\n", path), s.events())
}
