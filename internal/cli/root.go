package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/grvsharma1810/pulse/internal/apiclient"
	"github.com/grvsharma1810/pulse/internal/credentials"
	"github.com/grvsharma1810/pulse/internal/deviceflow"
	"github.com/grvsharma1810/pulse/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	errNotAuthenticated = errors.New(`not authenticated. Please run "pulse login" first`)
	errSessionExpired   = errors.New(`session expired. Please run "pulse login" again`)
)

// Config wires the CLI to its environment.
type Config struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	BackendURL string
	NewStore   func(logger *zap.Logger) (*credentials.Store, error)

	OpenBrowser func(url string) error
	After       func(d time.Duration) <-chan time.Time
}

// DefaultConfig uses the process stdio and the PULSE_* environment.
func DefaultConfig() Config {
	return Config{
		In:         os.Stdin,
		Out:        os.Stdout,
		ErrOut:     os.Stderr,
		BackendURL: apiclient.BackendURLFromEnv(),
		NewStore:   credentials.NewFromEnv,
	}
}

type runtimeState struct {
	cfg     Config
	verbose bool

	logger *zap.Logger
	store  *credentials.Store
	client *apiclient.Client
}

type runtimeKey struct{}

// commands that work without a valid local credential
var skipExpiryCheck = map[string]bool{
	"login":   true,
	"logout":  true,
	"version": true,
	"help":    true,
}

// NewRootCommand builds the pulse command tree.
func NewRootCommand(cfg Config) *cobra.Command {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ErrOut == nil {
		cfg.ErrOut = os.Stderr
	}
	if cfg.NewStore == nil {
		cfg.NewStore = credentials.NewFromEnv
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = apiclient.BackendURLFromEnv()
	}
	rt := &runtimeState{cfg: cfg}

	root := &cobra.Command{
		Use:           "pulse",
		Short:         "Pulse CLI - Manage your authentication and favorite color",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := rt.init(); err != nil {
				return err
			}
			if skipExpiryCheck[cmd.Name()] {
				return nil
			}
			return rt.checkLocalExpiry()
		},
	}

	root.SetIn(cfg.In)
	root.SetOut(cfg.Out)
	root.SetErr(cfg.ErrOut)
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Log diagnostics to stderr")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newStatusCommand(),
		newGetColorCommand(),
		newSetColorCommand(),
		newVersionCommand(),
	)

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(cfg Config, args []string) int {
	root := NewRootCommand(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err)
		return 1
	}
	return 0
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) init() error {
	rt.logger = logger.NewCLI(rt.cfg.ErrOut, rt.verbose)

	store, err := rt.cfg.NewStore(rt.logger)
	if err != nil {
		return err
	}
	rt.store = store

	client, err := apiclient.New(rt.cfg.BackendURL, store, rt.logger)
	if err != nil {
		return err
	}
	rt.client = client
	return nil
}

func (rt *runtimeState) checkLocalExpiry() error {
	if rt.store.Read() == nil || !rt.store.IsExpiredLocally() {
		return nil
	}
	if err := rt.store.Clear(); err != nil {
		rt.logger.Warn("failed to clear expired credential", zap.Error(err))
	}
	return errSessionExpired
}

func (rt *runtimeState) requireLogin() error {
	if !rt.store.IsLoggedIn() {
		return errNotAuthenticated
	}
	return nil
}

func (rt *runtimeState) flowOptions(noWait, noBrowser bool) deviceflow.Options {
	return deviceflow.Options{
		NoWait:      noWait,
		NoBrowser:   noBrowser || deviceflow.NoBrowserFromEnv(),
		In:          rt.cfg.In,
		Out:         rt.cfg.Out,
		OpenBrowser: rt.cfg.OpenBrowser,
		After:       rt.cfg.After,
	}
}

// apiError turns backend failures into user-facing errors.
func apiError(action string, err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return errNotAuthenticated
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func (rt *runtimeState) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(rt.cfg.Out, format, args...)
}
