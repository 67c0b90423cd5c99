package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlkv/internal/codec"
	"github.com/roach88/sqlkv/internal/store"
)

// session is one command's open store plus its output.
type session struct {
	store     *store.Store
	codec     *codec.Codec
	formatter *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// openSession opens the configured store. The caller must call close.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := newFormatter(opts, cmd)

	storeOpts, err := opts.StoreOptions()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, CodeInvalid, "invalid store configuration", err)
	}

	s, err := store.Open(commandContext(cmd), storeOpts)
	if err != nil {
		return nil, failure(formatter, "failed to open store", err)
	}

	return &session{
		store:     s,
		codec:     codec.New(s.Location()),
		formatter: formatter,
	}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		_ = s.formatter.Error(CodeBackend, "failed to close store", err.Error())
	}
}

// text renders a value the way it is stored.
func (s *session) text(v any) string {
	text, _, err := s.codec.Encode(v, time.Time{})
	if err != nil {
		return ""
	}
	if text == "" {
		return "null"
	}
	return text
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// failure maps a store error onto an exit code and structured error code.
func failure(f *OutputFormatter, message string, err error) error {
	var (
		connErr  *store.ConnectionError
		validErr *store.ValidationError
	)
	switch {
	case errors.As(err, &connErr):
		return f.Fail(ExitCommandError, CodeConnection, message, err)
	case errors.As(err, &validErr):
		return f.Fail(ExitCommandError, CodeInvalid, message, err)
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, store.ErrClosed):
		return f.Fail(ExitCommandError, CodeUnavailable, message, err)
	case errors.Is(err, store.ErrNotFound):
		return f.Fail(ExitFailure, CodeNotFound, message, err)
	default:
		return f.Fail(ExitFailure, CodeBackend, message, err)
	}
}
