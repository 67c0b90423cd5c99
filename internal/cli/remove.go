package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RemoveOptions holds flags for the rm command.
type RemoveOptions struct {
	*RootOptions
	All bool
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "rm [key]",
		Aliases: []string{"remove"},
		Short:   "Remove a key or every key of the namespace",
		Long: `Remove a key, or with --all every key of the namespace.

Removing a key that does not exist succeeds.

Example:
  sqlkv rm greeting
  sqlkv rm --all --namespace scratch`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeKeys(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "remove every key in the namespace")

	return cmd
}

func removeKeys(opts *RemoveOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	switch {
	case opts.All && len(args) > 0:
		return formatter.Fail(ExitCommandError, CodeInvalid, "--all does not take a key", nil)
	case !opts.All && len(args) == 0:
		return formatter.Fail(ExitCommandError, CodeInvalid, "a key or --all is required", nil)
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx := commandContext(cmd)
	ns := sess.store.Namespace()

	if opts.All {
		if err := sess.store.RemoveAll(ctx); err != nil {
			return failure(sess.formatter, "failed to clear namespace "+ns, err)
		}
		return sess.formatter.Success(map[string]any{"namespace": ns, "all": true},
			fmt.Sprintf("✓ Removed all keys in %s", ns))
	}

	key := args[0]
	if err := sess.store.Remove(ctx, key); err != nil {
		return failure(sess.formatter, "failed to remove "+key, err)
	}
	return sess.formatter.Success(map[string]any{"namespace": ns, "key": key},
		fmt.Sprintf("✓ Removed %s", key))
}
