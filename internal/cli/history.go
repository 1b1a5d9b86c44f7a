package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pgdict/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB          string
	Limit       int
	Fingerprint string
}

// HistoryEntry is one journal record for output.
type HistoryEntry struct {
	Seq         int64   `json:"seq"`
	ID          string  `json:"id"`
	Operation   string  `json:"operation"`
	Applicable  bool    `json:"applicable"`
	SQL         string  `json:"sql,omitempty"`
	Params      []any   `json:"params,omitempty"`
	Result      *string `json:"result,omitempty"`
	Fingerprint string  `json:"fingerprint"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded translations",
		Long: `Show the translations recorded with translate --db, oldest first.

Examples:
  pgdict history --db journal.db
  pgdict history --db journal.db --limit 10
  pgdict history --db journal.db --fingerprint <sha256>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "journal database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the last N records")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "show only records of one request")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB))
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	var records []store.Translation
	switch {
	case opts.Fingerprint != "":
		records, err = st.ReadByFingerprint(ctx, opts.Fingerprint)
	case opts.Limit > 0:
		records, err = st.ReadLatest(ctx, opts.Limit)
	default:
		records, err = st.ReadTranslations(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	entries := make([]HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = HistoryEntry{
			Seq:         r.Seq,
			ID:          r.ID,
			Operation:   r.Operation,
			Applicable:  r.Applicable,
			SQL:         r.SQL,
			Params:      r.Params,
			Result:      r.Result,
			Fingerprint: r.Fingerprint,
		}
	}
	return opts.output(cmd).Emit(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No translations recorded.")
			return
		}
		rows := make([][]string, len(entries))
		for i, e := range entries {
			sql, result := "not applicable", ""
			if e.Applicable {
				sql = e.SQL
			}
			if e.Result != nil {
				result = *e.Result
			}
			rows[i] = []string{fmt.Sprint(e.Seq), e.Operation, truncate(sql, 60), truncate(result, 30), e.Fingerprint[:12]}
		}
		writeTable(w, []string{"Seq", "Operation", "SQL", "Result", "Fingerprint"}, rows)
	})
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

