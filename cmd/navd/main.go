package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rexliu/navtree/pkg/config"
	"github.com/rexliu/navtree/pkg/ipc"
	"github.com/rexliu/navtree/pkg/logging"
)

const version = "0.1.0"

func main() {
	var profile, socket string
	root := &cobra.Command{
		Use:           "navd",
		Short:         "Workspace navigation daemon",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, profile, socket)
		},
	}
	root.Flags().StringVar(&profile, "profile", "./_dev_profile", "Path to profile directory")
	root.Flags().StringVar(&socket, "socket", "", "Override IPC socket path (optional)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "navd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, profileDir, socketOverride string) (err error) {
	cfg, err := loadOrCreateProfile(profileDir)
	if err != nil {
		return err
	}
	logCfg := cfg.Logging
	logCfg.FilePath = config.ResolvePath(profileDir, logCfg.FilePath)
	logger, err := logging.Build("navd", logCfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting daemon", zap.String("profile", profileDir), zap.String("version", version))

	d, err := newDaemon(ctx, profileDir, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, d.Close()) }()

	socketPath := socketOverride
	if socketPath == "" {
		socketPath = config.ResolvePath(profileDir, cfg.IPC.SocketPath)
	}
	if err := cleanupSocket(socketPath); err != nil {
		return err
	}

	srv := ipc.NewServer(logger.Named("ipc"))
	d.registerHandlers(srv)
	if err := srv.Start(ctx, socketPath); err != nil {
		return fmt.Errorf("start ipc: %w", err)
	}
	defer func() {
		err = multierr.Combine(err, srv.Stop(), cleanupSocket(socketPath))
	}()

	logger.Info("daemon ready", zap.String("socket", socketPath))
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// loadOrCreateProfile reads config.toml, writing the default profile on first run.
func loadOrCreateProfile(profileDir string) (*config.ProfileConfig, error) {
	if err := os.MkdirAll(profileDir, 0o700); err != nil {
		return nil, err
	}
	cfg, err := config.LoadProfile(profileDir)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.DefaultProfile(filepath.Base(profileDir))
		err = config.Save(filepath.Join(profileDir, config.FileName), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return cfg, nil
}

func cleanupSocket(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
