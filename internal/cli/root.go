package cli

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend   string
	DSN       string
	Table     string
	Namespace string
	Naming    string
	Timezone  string
	Schema    string
	Init      bool

	// Structured SQL Server descriptor, used when DSN is empty.
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Driver   string

	Format     string // "text" | "json" | "yaml"
	LogLevel   zapcore.Level
	LogFormat  string
	ConfigFile string

	// Logger is built by the root command; nil means no diagnostics.
	Logger *zap.Logger
	// RunID is a time-sortable UUIDv7 attached to every log entry of one invocation.
	RunID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the sqlkv CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlkv",
		Short: "sqlkv - key-value storage over SQL databases",
		Long: `A namespaced key-value store layered over SQLite, MySQL, PostgreSQL and SQL Server.

Values are JSON documents stored under a (namespace, key) pair in a single table.
Settings come from flags, SQLKV_* environment variables (including .env and
.env.local files) and an optional config file, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, opts); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			log, err := NewLogger(cmd.ErrOrStderr(), opts.LogFormat, opts.LogLevel)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid logging configuration", err)
			}
			opts.RunID = uuid.Must(uuid.NewV7()).String()
			opts.Logger = log.With(zap.String("run_id", opts.RunID))
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Backend, "backend", "sqlite", "backend (sqlite|mysql|postgres|sqlserver)")
	flags.StringVar(&opts.DSN, "dsn", "", "connection descriptor; empty uses the backend default")
	flags.StringVar(&opts.Table, "table", "pycoki", "table name")
	flags.StringVarP(&opts.Namespace, "namespace", "n", "__", "namespace")
	flags.StringVar(&opts.Naming, "naming", "prefixed", "column naming scheme (prefixed|plain)")
	flags.StringVar(&opts.Timezone, "timezone", "UTC", "IANA time zone rows are stamped in")
	flags.StringVar(&opts.Schema, "schema", "", "MySQL schema for the table existence check")
	flags.BoolVar(&opts.Init, "init", false, "create the table if missing before running the command")
	flags.StringVar(&opts.Host, "host", "", "SQL Server host")
	flags.IntVar(&opts.Port, "port", 0, "SQL Server port")
	flags.StringVar(&opts.Database, "database", "", "SQL Server database")
	flags.StringVar(&opts.User, "user", "", "SQL Server user")
	flags.StringVar(&opts.Password, "password", "", "SQL Server password")
	flags.StringVar(&opts.Driver, "driver", "", "SQL Server ODBC driver name")
	flags.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	LevelVar(flags, &opts.LogLevel, "log-level", zapcore.WarnLevel, "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "auto", "log format (auto|console|logfmt|json)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
