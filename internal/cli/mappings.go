package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// MappingInfo describes one registered type mapping.
type MappingInfo struct {
	StoreType string `json:"store_type"`
	Shape     string `json:"shape"`
	Encoding  string `json:"encoding"`
}

// NewMappingsCommand creates the mappings command.
func NewMappingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "List the type mappings in effect",
		Long: `List the registered (store type, shape) mappings in lookup order,
including those added by --config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}

			infos := make([]MappingInfo, 0)
			for _, m := range reg.Mappings() {
				enc := "-"
				if m.Encoding().Known() {
					enc = m.Encoding().String()
				}
				infos = append(infos, MappingInfo{
					StoreType: m.StoreType(),
					Shape:     m.Shape().String(),
					Encoding:  enc,
				})
			}
			return rootOpts.output(cmd).Emit(infos, func(w io.Writer) {
				rows := make([][]string, len(infos))
				for i, m := range infos {
					rows[i] = []string{m.StoreType, m.Shape, m.Encoding}
				}
				writeTable(w, []string{"Store type", "Shape", "Encoding"}, rows)
			})
		},
	}
}
