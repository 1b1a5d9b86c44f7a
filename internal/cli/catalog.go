package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pgdict/internal/catalog"
)

// OpInfo describes one catalog entry for output.
type OpInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Arity   int      `json:"arity"`
	Params  []string `json:"params"`
	Returns string   `json:"returns"`
}

// CatalogInfo is the output of the catalog command.
type CatalogInfo struct {
	Operations []OpInfo `json:"operations"`
	Members    []string `json:"members"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "catalog",
		Short:         "List the translatable operations and members",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildCatalog()
			return rootOpts.output(cmd).Emit(info, func(w io.Writer) {
				rows := make([][]string, 0, len(info.Operations))
				for _, op := range info.Operations {
					rows = append(rows, []string{op.Name, fmt.Sprint(op.Arity), strings.Join(op.Params, ", "), op.Returns})
				}
				writeTable(w, []string{"Operation", "Arity", "Params", "Returns"}, rows)
				fmt.Fprintf(w, "Members: %s\n", strings.Join(info.Members, ", "))
			})
		},
	}
}

func buildCatalog() CatalogInfo {
	info := CatalogInfo{}
	for _, name := range catalog.QualifiedNames() {
		op, _ := catalog.ParseOp(name)
		spec := op.Spec()
		info.Operations = append(info.Operations, OpInfo{
			Name:    name,
			Kind:    spec.Kind.String(),
			Arity:   spec.Arity,
			Params:  spec.Params,
			Returns: spec.Returns,
		})
	}
	for _, m := range catalog.Members() {
		info.Members = append(info.Members, m.String())
	}
	return info
}
