package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/config"
	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/ipc"
	"github.com/rexliu/navtree/pkg/logging"
	"github.com/rexliu/navtree/pkg/syncer"
	"github.com/rexliu/navtree/pkg/workspace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "navctl: %v\n", err)
		os.Exit(1)
	}
}

// App carries the global flags shared by every command.
type App struct {
	Profile string
	Socket  string
	Product string
	Timeout time.Duration
	Verbose bool
}

func newRootCmd() *cobra.Command {
	app := &App{}
	cmd := &cobra.Command{
		Use:           "navctl",
		Short:         "Manage the workspace navigation tree through navd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&app.Profile, "profile", "./_dev_profile", "Profile directory")
	flags.StringVar(&app.Socket, "socket", "", "Override socket path")
	flags.StringVar(&app.Product, "product", "", "Product scope (defaults to the profile's workspace.product)")
	flags.DurationVar(&app.Timeout, "timeout", 10*time.Second, "Per-command timeout")
	flags.BoolVarP(&app.Verbose, "verbose", "v", false, "Log sync activity to stderr")

	cmd.AddCommand(
		newInitCmd(app),
		newDiagCmd(app),
		newPingCmd(app),
		newTreeCmd(app),
		newMkdirCmd(app),
		newAddCmd(app),
		newRenameCmd(app),
		newMoveCmd(app),
		newRemoveCmd(app),
		newColorCmd(app),
		newReorderCmd(app),
		newSnapshotCmd(app),
		newWatchCmd(app),
		newVCSCmd(app),
	)
	return cmd
}

func (a *App) config() (*config.ProfileConfig, error) {
	cfg, err := config.LoadProfile(a.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w (run `navctl init`)", a.Profile, err)
	}
	return cfg, nil
}

func (a *App) socketPath(cfg *config.ProfileConfig) string {
	if a.Socket != "" {
		return a.Socket
	}
	return config.ResolvePath(a.Profile, cfg.IPC.SocketPath)
}

func (a *App) product(cfg *config.ProfileConfig) core.Product {
	if a.Product != "" {
		return core.Product(a.Product)
	}
	return core.Product(cfg.Workspace.Product)
}

func (a *App) logger() *zap.Logger {
	if !a.Verbose {
		return zap.NewNop()
	}
	return logging.New("navctl")
}

func (a *App) dial(ctx context.Context) (*ipc.Client, *config.ProfileConfig, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	client, err := ipc.Dial(ctx, a.socketPath(cfg))
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// session is a loaded workspace bound to the daemon.
type session struct {
	store  *workspace.Store
	sync   *syncer.Syncer
	client *ipc.Client
}

func (s *session) Close() error {
	return s.client.Close()
}

func (a *App) openSession(ctx context.Context) (*session, error) {
	client, cfg, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	logger := a.logger()
	opts := cfg.Workspace.Options()
	opts.Logger = logger.Named("workspace")
	store := workspace.NewStore(opts)
	sc := syncer.New(store, syncer.NewRemoteBackend(client), syncer.Options{
		MaxRetries: cfg.Workspace.MaxRetries,
		RetryDelay: 200 * time.Millisecond,
		Logger:     logger.Named("sync"),
	})
	if err := sc.Load(ctx, a.product(cfg)); err != nil {
		client.Close()
		return nil, err
	}
	return &session{store: store, sync: sc, client: client}, nil
}

func (a *App) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.Timeout)
}

func newInitCmd(app *App) *cobra.Command {
	var name string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a local profile (writes config.toml)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(app.Profile, 0o700); err != nil {
				return err
			}
			path := filepath.Join(app.Profile, config.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			cfg := config.DefaultProfile(name)
			if app.Product != "" {
				cfg.Workspace.Product = app.Product
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized profile %s at %s\n", cfg.ProfileName, app.Profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "dev", "Profile name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config if present")
	return cmd
}

func newDiagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "diag",
		Short: "Print profile configuration paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile: %s\n", cfg.ProfileName)
			fmt.Fprintf(out, "Config: %s\n", filepath.Join(app.Profile, config.FileName))
			fmt.Fprintf(out, "DB Path: %s\n", config.ResolvePath(app.Profile, cfg.Storage.DBPath))
			fmt.Fprintf(out, "Socket: %s\n", app.socketPath(cfg))
			if cfg.Logging.FilePath != "" {
				fmt.Fprintf(out, "Log File: %s\n", config.ResolvePath(app.Profile, cfg.Logging.FilePath))
			}
			fmt.Fprintf(out, "Product: %s (max depth %d, history %d)\n", app.product(cfg), cfg.Workspace.MaxDepth, cfg.Workspace.MaxHistory)
			fmt.Fprintf(out, "VCS Branch: %s (enabled=%t)\n", cfg.VCS.Branch, cfg.VCS.Enabled)
			if cfg.VCS.Remote.URL != "" {
				fmt.Fprintf(out, "Remote URL: %s\n", cfg.VCS.Remote.URL)
			}
			return nil
		},
	}
}

func newPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Call the daemon ping endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := app.context(cmd)
			defer cancel()
			client, _, err := app.dial(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			var res ipc.PingResult
			if err := client.Call(ctx, ipc.MethodPing, nil, &res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "daemon responded: version=%s uptime=%ds\n", res.Version, res.Uptime)
			return nil
		},
	}
}
