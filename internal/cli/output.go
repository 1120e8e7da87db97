package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/threadboard/internal/board"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected operation (validation, unknown parent, storage full)
	ExitCommandError = 2 // Command error (bad config, database cannot be opened)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string        `json:"status"`           // "ok" or "error"
	Data   any           `json:"data,omitempty"`   // success payload
	Error  *CLIError     `json:"error,omitempty"`  // error details
	Events []board.Event `json:"events,omitempty"` // notifications raised by the operation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // board error code, e.g. "VALIDATION"
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a result. In text mode text is printed after the
// notifications; in JSON mode data and the notifications form the envelope.
func (f *OutputFormatter) Success(data any, text string, events []board.Event) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
			Events: events,
		})
	}

	f.Notify(events)
	if text != "" {
		fmt.Fprint(f.Writer, text)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any, events []board.Event) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			Events: events,
		})
	}

	f.Notify(events)
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err, which may carry a board error code, and returns the
// ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error, events []board.Event) error {
	code := string(board.CodeOf(err))
	if code == "" {
		code = "ERROR"
	}
	var details any
	if err != nil {
		details = err.Error()
	}
	_ = f.Error(code, message, details, events)
	return WrapExitError(ExitFailure, message, err)
}

// Notify prints notifications, one per line, in text mode.
func (f *OutputFormatter) Notify(events []board.Event) {
	if f.Format == "json" {
		return
	}
	for _, ev := range events {
		fmt.Fprintf(f.Writer, "[%s] %s\n", ev.Level, ev.Message)
	}
}

// WatchUpdate is one line of watch output in JSON mode.
type WatchUpdate struct {
	Event board.Event `json:"event"`
	Stats board.Stats `json:"stats"`
}

// Update reports a notification raised while watching, followed by the
// stats it left the board in. JSON mode writes one object per line.
func (f *OutputFormatter) Update(ev board.Event, st board.Stats) {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(WatchUpdate{Event: ev, Stats: st})
		return
	}
	f.Notify([]board.Event{ev})
	fmt.Fprintf(f.Writer, "  %d comments, %d authors, last activity %s\n",
		st.Total, st.UniqueAuthors, st.LastActivity)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
