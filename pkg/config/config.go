package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/rexliu/navtree/pkg/core"
	"github.com/rexliu/navtree/pkg/workspace"
)

// FileName is the profile config file inside a profile directory.
const FileName = "config.toml"

// IPCConfig defines socket settings.
type IPCConfig struct {
	SocketPath string `toml:"socketPath" validate:"required"`
}

// StorageConfig defines SQLite tuning options.
type StorageConfig struct {
	DBPath      string `toml:"dbPath" validate:"required"`
	JournalMode string `toml:"journalMode" validate:"omitempty,oneof=DELETE WAL TRUNCATE MEMORY"`
	Synchronous string `toml:"synchronous" validate:"omitempty,oneof=OFF NORMAL FULL EXTRA"`
}

// VCSRemote config.
type VCSRemote struct {
	URL           string `toml:"url" validate:"omitempty,url"`
	CredentialRef string `toml:"credentialRef"`
}

// VCSConfig defines Git options for snapshot history.
type VCSConfig struct {
	Enabled  bool      `toml:"enabled"`
	Branch   string    `toml:"branch"`
	AutoPush bool      `toml:"autoPush"`
	Author   string    `toml:"author"`
	Email    string    `toml:"email" validate:"omitempty,email"`
	Remote   VCSRemote `toml:"remote"`
}

// LoggingConfig defines basic logging knobs.
type LoggingConfig struct {
	Level       string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	FilePath    string `toml:"filePath"`
	FileMaxSize int    `toml:"fileMaxSizeMB" validate:"gte=0"`
}

// WorkspaceConfig tunes the navigation tree.
type WorkspaceConfig struct {
	Product       string `toml:"product" validate:"required"`
	MaxDepth      int    `toml:"maxDepth" validate:"gte=0,lte=16"`
	MaxHistory    int    `toml:"maxHistory" validate:"gte=1"`
	MaxNameLength int    `toml:"maxNameLength" validate:"gte=1"`
	MaxRetries    int    `toml:"maxRetries" validate:"gte=0"`
}

// ProfileConfig aggregates service configuration for a profile.
type ProfileConfig struct {
	ProfileName string          `toml:"profileName" validate:"required"`
	Storage     StorageConfig   `toml:"storage"`
	VCS         VCSConfig       `toml:"vcs"`
	IPC         IPCConfig       `toml:"ipc"`
	Logging     LoggingConfig   `toml:"logging"`
	Workspace   WorkspaceConfig `toml:"workspace"`
}

var validate = validator.New()

// DefaultProfile returns a ready-to-save profile named name.
func DefaultProfile(name string) *ProfileConfig {
	cfg := &ProfileConfig{
		ProfileName: name,
		Storage: StorageConfig{
			DBPath:      "state.db",
			JournalMode: "DELETE",
			Synchronous: "FULL",
		},
		IPC:     IPCConfig{SocketPath: "ipc.sock"},
		Logging: LoggingConfig{Level: "info"},
		Workspace: WorkspaceConfig{
			Product: "flow",
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads config.toml from the provided path.
func Load(path string) (*ProfileConfig, error) {
	var cfg ProfileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadProfile reads the config file inside profileDir.
func LoadProfile(profileDir string) (*ProfileConfig, error) {
	return Load(filepath.Join(profileDir, FileName))
}

// Save validates cfg and writes it to path.
func Save(path string, cfg *ProfileConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// ResolvePath anchors relative paths at the profile directory.
func ResolvePath(profileDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(profileDir, path)
}

// Options converts the workspace section into store options.
func (w WorkspaceConfig) Options() workspace.Options {
	return workspace.Options{
		MaxDepth:      w.MaxDepth,
		MaxHistory:    w.MaxHistory,
		MaxNameLength: w.MaxNameLength,
	}
}

func (cfg *ProfileConfig) applyDefaults() {
	if cfg.VCS.Branch == "" {
		cfg.VCS.Branch = "main"
	}
	if cfg.VCS.Author == "" {
		cfg.VCS.Author = "navtree"
	}
	if cfg.Workspace.MaxDepth == 0 {
		cfg.Workspace.MaxDepth = core.DefaultMaxDepth
	}
	if cfg.Workspace.MaxHistory == 0 {
		cfg.Workspace.MaxHistory = workspace.DefaultMaxHistory
	}
	if cfg.Workspace.MaxNameLength == 0 {
		cfg.Workspace.MaxNameLength = core.DefaultMaxNameLength
	}
	if cfg.Workspace.MaxRetries == 0 {
		cfg.Workspace.MaxRetries = 3
	}
}

func (cfg *ProfileConfig) validate() error {
	cfg.applyDefaults()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
