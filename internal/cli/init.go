package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the key-value table if it does not exist",
		Long: `Create the key-value table if it does not exist.

The existence check and the CREATE TABLE run in one transaction. Running
init against a table that already exists changes nothing.

Example:
  sqlkv init --backend postgres --dsn "host=db dbname=app sslmode=disable"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initTable(rootOpts, cmd)
		},
	}
}

func initTable(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.store.InitTable(commandContext(cmd)); err != nil {
		return failure(sess.formatter, "failed to initialize table", err)
	}

	table := sess.store.Statements().Table
	return sess.formatter.Success(map[string]string{
		"backend": sess.store.Dialect().Name(),
		"table":   table,
	}, fmt.Sprintf("✓ Table %s ready (%s)", table, sess.store.Dialect().Name()))
}
