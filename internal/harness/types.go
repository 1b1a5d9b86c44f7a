package harness

// Outcome is what a request translated and evaluated to.
type Outcome struct {
	// Op is the qualified operation or "member.<Name>".
	Op string `json:"op"`

	Applicable bool `json:"applicable"`

	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`

	// Value is the evaluated runtime value and Text its PostgreSQL text
	// output. Text is nil when the request was not evaluated.
	Value any     `json:"-"`
	Text  *string `json:"result,omitempty"`

	// EvalError is set when evaluation failed; the SQL is still valid.
	EvalError string `json:"eval_error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	Outcome *Outcome `json:"outcome"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(outcome *Outcome) *Result {
	return &Result{
		Pass:    true,
		Outcome: outcome,
		Errors:  []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
