package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Success, including a not-applicable translation
	ExitFailure      = 1 // At least one scenario failed
	ExitCommandError = 2 // Missing file, bad request or bad config
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, ExitFailure when
// there is none.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the envelope of every --format json output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error member of a Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Output writes command results as text or as a JSON Response.
type Output struct {
	JSON    bool
	Writer  io.Writer
	Diag    io.Writer // verbose notes; kept off Writer so JSON stays parseable
	Verbose bool
}

// Emit writes data. In JSON mode data is wrapped in an ok Response;
// otherwise text renders it.
func (o *Output) Emit(data any, text func(w io.Writer)) error {
	if o.JSON {
		return o.encode(Response{Status: "ok", Data: data})
	}
	text(o.Writer)
	return nil
}

// Fail returns err as an ExitError. In JSON mode it first writes an error
// Response with err as details; in text mode cmd/pgdict prints the error.
func (o *Output) Fail(exitCode int, code, message string, err error) error {
	if o.JSON {
		resp := &ResponseError{Code: code, Message: message}
		if err != nil {
			resp.Details = err.Error()
		}
		if werr := o.encode(Response{Status: "error", Error: resp}); werr != nil {
			return werr
		}
	}
	return WrapExitError(exitCode, message, err)
}

// Notef writes a line to Diag when verbose.
func (o *Output) Notef(format string, args ...any) {
	if !o.Verbose || o.Diag == nil {
		return
	}
	fmt.Fprintf(o.Diag, format+"\n", args...)
}

func (o *Output) encode(resp Response) error {
	enc := json.NewEncoder(o.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func writeTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

// color disables itself when stdout is not a terminal or NO_COLOR is set.
var (
	passMark = color.New(color.FgHiGreen).Sprint("✓")
	failMark = color.New(color.FgHiRed).Sprint("✗")
)
