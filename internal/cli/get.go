package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print the value stored under a key",
		Long: `Print the value stored under a key as JSON.

Without a key every entry of the namespace is printed. A missing key exits
with status 1.

Example:
  sqlkv get greeting
  sqlkv get --namespace settings --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return getAll(rootOpts, cmd)
			}
			return getKey(rootOpts, args[0], cmd)
		},
	}
}

func getKey(opts *RootOptions, key string, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	v, err := sess.store.Get(commandContext(cmd), key)
	if err != nil {
		return failure(sess.formatter, "failed to get "+key, err)
	}
	if v == nil {
		return sess.formatter.Fail(ExitFailure, CodeNotFound, "key not found: "+key, nil)
	}

	return sess.formatter.Success(map[string]any{
		"namespace": sess.store.Namespace(),
		"key":       key,
		"value":     v,
	}, sess.text(v))
}

func getAll(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	all, err := sess.store.GetAll(commandContext(cmd))
	if err != nil {
		return failure(sess.formatter, "failed to get namespace "+sess.store.Namespace(), err)
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('\t')
		b.WriteString(sess.text(all[k]))
	}

	return sess.formatter.Success(map[string]any{
		"namespace": sess.store.Namespace(),
		"entries":   all,
	}, b.String())
}
