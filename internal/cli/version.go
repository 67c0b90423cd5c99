package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlkv/internal/dialect"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the sqlkv version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			return formatter.Success(map[string]any{
				"version":  Version,
				"go":       runtime.Version(),
				"backends": dialect.Names(),
			}, "sqlkv "+Version)
		},
	}
}
