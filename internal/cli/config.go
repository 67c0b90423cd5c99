package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/sqlkv/internal/dialect"
	"github.com/roach88/sqlkv/internal/store"
)

// EnvPrefix is prepended to every environment variable read by the CLI.
const EnvPrefix = "sqlkv"

// loadConfig resolves every global option from flags, the environment and
// the config file, in that order of precedence.
func loadConfig(cmd *cobra.Command, opts *RootOptions) error {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
	}

	opts.Backend = v.GetString("backend")
	opts.DSN = v.GetString("dsn")
	opts.Table = v.GetString("table")
	opts.Namespace = v.GetString("namespace")
	opts.Naming = v.GetString("naming")
	opts.Timezone = v.GetString("timezone")
	opts.Schema = v.GetString("schema")
	opts.Init = v.GetBool("init")
	opts.Host = v.GetString("host")
	opts.Port = v.GetInt("port")
	opts.Database = v.GetString("database")
	opts.User = v.GetString("user")
	opts.Password = v.GetString("password")
	opts.Driver = v.GetString("driver")
	opts.Format = v.GetString("format")
	opts.LogFormat = v.GetString("log-format")
	opts.ConfigFile = v.GetString("config")

	if err := opts.LogLevel.Set(v.GetString("log-level")); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// StoreOptions converts the resolved options into store options.
func (o *RootOptions) StoreOptions() (store.Options, error) {
	d, err := dialect.Lookup(o.Backend)
	if err != nil {
		return store.Options{}, err
	}
	naming, err := dialect.ParseNaming(o.Naming)
	if err != nil {
		return store.Options{}, err
	}
	loc := time.UTC
	if o.Timezone != "" {
		loc, err = time.LoadLocation(o.Timezone)
		if err != nil {
			return store.Options{}, fmt.Errorf("invalid timezone %q: %w", o.Timezone, err)
		}
	}

	return store.Options{
		Dialect:    d,
		Descriptor: o.descriptor(d),
		Table:      o.Table,
		Namespace:  o.Namespace,
		Naming:     naming,
		Location:   loc,
		Schema:     o.Schema,
		InitTable:  o.Init,
		Logger:     o.Logger,
	}, nil
}

// descriptor returns the DSN, or for SQL Server the structured form when
// any of its parameters are set.
func (o *RootOptions) descriptor(d dialect.Dialect) string {
	if o.DSN != "" {
		return o.DSN
	}
	if _, ok := d.(dialect.SQLServer); !ok {
		return ""
	}
	p := dialect.ServerParams{
		Host:     o.Host,
		Port:     o.Port,
		Database: o.Database,
		User:     o.User,
		Password: o.Password,
		Driver:   o.Driver,
	}
	if p == (dialect.ServerParams{}) {
		return ""
	}
	return p.String()
}
