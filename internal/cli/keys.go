package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "keys",
		Short:         "List the keys of the namespace",
		Long:          "List the keys of the namespace, one per line, in key order.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeys(rootOpts, cmd)
		},
	}
}

func listKeys(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	keys, err := sess.store.Keys(commandContext(cmd))
	if err != nil {
		return failure(sess.formatter, "failed to list keys", err)
	}

	return sess.formatter.Success(map[string]any{
		"namespace": sess.store.Namespace(),
		"keys":      keys,
	}, strings.Join(keys, "\n"))
}
