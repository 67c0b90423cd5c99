package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Raw bool
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under a key",
		Long: `Store a JSON value under a key, replacing any previous value.

Strings matching "2006-01-02 15:04:05 -0700" or "2006-01-02 15:04:05" are
stored as timestamps. Use --raw to store the argument as a plain string.

Example:
  sqlkv set greeting '{"text":"hi"}'
  sqlkv set motd --raw 'hello world'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setKey(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "store the value as a plain string instead of parsing JSON")

	return cmd
}

func setKey(opts *SetOptions, key, arg string, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	var value any = arg
	if !opts.Raw {
		value, err = sess.codec.Decode(arg)
		if err != nil {
			return sess.formatter.Fail(ExitCommandError, CodeInvalid, "invalid value JSON", err)
		}
	}

	if err := sess.store.Set(commandContext(cmd), key, value); err != nil {
		return failure(sess.formatter, "failed to set "+key, err)
	}

	return sess.formatter.Success(map[string]any{
		"namespace": sess.store.Namespace(),
		"key":       key,
	}, fmt.Sprintf("✓ Set %s", key))
}
