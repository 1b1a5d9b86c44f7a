package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pgdict/internal/harness"
	"github.com/roach88/pgdict/internal/store"
)

// Error codes reported by translate in JSON output.
const (
	ErrCodeNotFound  = "E005" // Path not found
	ErrCodeRequest   = "E301" // Malformed request file
	ErrCodeTranslate = "E302" // Translation could not be rendered
	ErrCodeJournal   = "E303" // Journal write failed
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Eval bool   // show the evaluated result
	DB   string // journal database; empty for none
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <request.yaml>",
		Short: "Translate one dictionary operation to SQL",
		Long: `Translate the operation described by a request file and print the SQL.

A request names an op (or member) and its operands:

  op: fn.Remove
  operands:
    - {column: j, store: json, value: {a: "1"}}
    - {param: k, shape: string, value: a}

Operations the translator declines are reported as not applicable.

Examples:
  pgdict translate request.yaml
  pgdict translate request.yaml --eval
  pgdict translate request.yaml --db journal.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Eval, "eval", false, "evaluate the translation against the request's values")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the translation in a journal database")

	return cmd
}

func runTranslate(cmd *cobra.Command, opts *TranslateOptions, path string) error {
	f := opts.output(cmd)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("request file not found: %s", path), nil)
	}
	req, err := harness.LoadRequest(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeRequest, "invalid request", err)
	}
	f.Notef("loaded %s request from %s", req.OpName(), path)

	h, err := opts.newHarness(cmd)
	if err != nil {
		return err
	}
	out, err := h.Execute(req)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeTranslate, "translation failed", err)
	}
	if !opts.Eval {
		out.Value, out.Text, out.EvalError = nil, nil, ""
	}

	if opts.DB != "" {
		seq, err := journal(cmd.Context(), opts.DB, req, out)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to record translation", err)
		}
		f.Notef("recorded translation %d in %s", seq, opts.DB)
	}

	return f.Emit(out, func(w io.Writer) {
		fmt.Fprintln(w, formatOutcome(out))
	})
}

func formatOutcome(out *harness.Outcome) string {
	if !out.Applicable {
		return fmt.Sprintf("%s: not applicable", out.Op)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SQL:    %s", out.SQL)
	for i, a := range out.Args {
		fmt.Fprintf(&b, "\n$%d:     %s", i+1, formatArg(a))
	}
	switch {
	case out.Text != nil:
		fmt.Fprintf(&b, "\nResult: %s", *out.Text)
	case out.EvalError != "":
		fmt.Fprintf(&b, "\nResult: error: %s", out.EvalError)
	}
	return b.String()
}

func formatArg(a any) string {
	if a == nil {
		return "NULL"
	}
	return fmt.Sprint(a)
}

// journal appends the translation to the store at path and returns its seq.
func journal(ctx context.Context, path string, req *harness.Request, out *harness.Outcome) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	t := &store.Translation{
		Operation:  out.Op,
		Request:    req.Canonical(),
		Applicable: out.Applicable,
		SQL:        out.SQL,
		Params:     out.Args,
		Result:     out.Text,
	}
	if err := st.WriteTranslation(ctx, t); err != nil {
		return 0, err
	}
	return t.Seq, nil
}
