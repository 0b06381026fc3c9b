package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/avwizard/internal/wizard"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or a page that failed to render
	ExitCommandError = 2 // Command error (store unavailable, unreadable file, etc.)
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
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
	cyan  = color.New(color.FgCyan)
	bold  = color.New(color.Bold)
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// SaveResponse is the JSON payload for a wizard save.
type SaveResponse struct {
	Message string `json:"message"`
	Next    string `json:"next"`
}

// Saved reports a successful wizard save and the suggested next page.
func (f *OutputFormatter) Saved(r wizard.Result) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: SaveResponse{Message: r.Message, Next: string(r.Next)}})
	}
	green.Fprintf(f.Writer, "✓ %s\n", r.Message)
	if r.Next != "" {
		cyan.Fprintf(f.Writer, "→ next: %s\n", r.Next.Hash())
	}
	return nil
}

// ViewResponse is the JSON payload for a rendered page.
type ViewResponse struct {
	Fragment string `json:"fragment"`
	Title    string `json:"title"`
	Banner   string `json:"banner,omitempty"`
	Body     string `json:"body"`
}

// View prints a rendered page. A banner is printed above the body in text
// mode.
func (f *OutputFormatter) View(v wizard.View) error {
	if f.Format == "json" {
		status := "ok"
		if v.Failed() {
			status = "error"
		}
		return f.encode(CLIResponse{Status: status, Data: ViewResponse{
			Fragment: string(v.Fragment),
			Title:    v.Title,
			Banner:   v.Banner,
			Body:     v.Body,
		}})
	}

	bold.Fprintf(f.Writer, "%s\n\n", v.Title)
	if v.Banner != "" {
		red.Fprintf(f.Writer, "! %s\n\n", v.Banner)
	}
	fmt.Fprint(f.Writer, v.Body)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	red.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
