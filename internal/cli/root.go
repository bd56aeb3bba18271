// Package cli implements the shelf command-line interface.
//
// Every command that touches data attaches a Shelf using config.yaml from
// the config directory, runs one operation and detaches.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/internal/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the state built before a command runs.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	resolvedConfigDir string
	v                 *viper.Viper
	logger            *zap.Logger
}

// NewRootCmd creates the top-level "shelf" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "shelf",
		Short: "Content store for news, activities, achievements and FAQ",
		Long: "Shelf keeps the records behind an admin dashboard: four content kinds,\n" +
			"a trash that restores deleted records to where they came from, and an\n" +
			"activity log.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: ./.shelf or the per-user config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: from config.yaml)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newTrashCmd(a))
	root.AddCommand(newLogCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "shelf:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves the config directory, loads config.yaml and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemErr(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return systemErr(err)
	}
	logger, err := newLogger(v.GetString(cfgKeyLogLevel), v.GetString(cfgKeyLogFormat), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.resolvedConfigDir = dir
	a.v = v
	a.logger = logger
	return nil
}

// config builds the shelf configuration from config.yaml, the environment
// and the --data-dir flag.
func (a *app) config() (types.Config, error) {
	cfg := configFromViper(a.v)
	dataDir, err := paths.ResolveDataDir(a.dataDir, cfg.DataDir, a.resolvedConfigDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	return cfg, nil
}

// open attaches a shelf. The caller must Detach it.
func (a *app) open(ctx context.Context) (*shelf.Shelf, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, systemErr(err)
	}
	s := shelf.New(shelf.WithLogger(a.logger))
	if err := s.Attach(ctx, cfg); err != nil {
		if isConfigError(err) {
			return nil, err
		}
		return nil, systemErr(fmt.Errorf("attach: %w", err))
	}
	return s, nil
}

// withShelf attaches a shelf, runs fn and detaches.
func (a *app) withShelf(cmd *cobra.Command, fn func(ctx context.Context, s *shelf.Shelf) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Detach(); err != nil {
			a.logger.Warn("detach failed", zap.Error(err))
		}
	}()
	return fn(ctx, s)
}

// sysError marks an error as a failure of the environment rather than of
// the user's input.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemErr(err error) error {
	if err == nil {
		return nil
	}
	return &sysError{err: err}
}

// userErrors are the sentinels a user can cause with bad input.
var userErrors = []error{
	types.ErrValidation,
	types.ErrNotFound,
	types.ErrConflict,
	types.ErrUnknownKind,
	types.ErrInvalidSortKey,
	types.ErrInvalidData,
}

// classify passes user errors through and marks everything else as a
// system error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return systemErr(err)
}

func isConfigError(err error) bool {
	for _, target := range []error{types.ErrBackendEmpty, types.ErrBackendUnknown, types.ErrRedisAddrEmpty, types.ErrPageSizeInvalid} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func exitCode(err error) int {
	var se *sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
