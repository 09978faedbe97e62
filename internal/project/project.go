// Package project locates the .swecheck directory that holds configuration, the
// debug log and the run history.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/newhook/swecheck/internal/db"
	"github.com/newhook/swecheck/internal/logging"
)

const (
	// ConfigDir is the directory name for project configuration.
	ConfigDir = logging.ConfigDir
	// ConfigFile is the name of the project config file.
	ConfigFile = "config.toml"
	// HistoryDB is the name of the run history database file.
	HistoryDB = "history.db"
)

// Project is a directory tree configured for swecheck.
type Project struct {
	Root   string  // Project directory path
	Config *Config // Parsed config.toml
	DB     *db.DB  // Run history, nil when history is disabled
}

// Find finds a project from a flag value or current directory.
// If flagValue is non-empty, uses that path; otherwise uses cwd.
func Find(ctx context.Context, flagValue string) (*Project, error) {
	if flagValue != "" {
		return find(ctx, flagValue)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return find(ctx, cwd)
}

// FindOrDefault is Find, falling back to a project-less default configuration
// rooted at the working directory when no project exists.
func FindOrDefault(ctx context.Context, flagValue string) *Project {
	if proj, err := Find(ctx, flagValue); err == nil {
		return proj
	}
	root, _ := os.Getwd()
	return &Project{Root: root, Config: &Config{}}
}

// find walks up from startDir looking for a .swecheck/ directory.
func find(ctx context.Context, startDir string) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	for {
		configPath := filepath.Join(dir, ConfigDir, ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return load(ctx, dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no project found (no %s directory)", ConfigDir)
		}
		dir = parent
	}
}

// load loads a project from the given root directory.
func load(ctx context.Context, root string) (*Project, error) {
	configPath := filepath.Join(root, ConfigDir, ConfigFile)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	proj := &Project{
		Root:   root,
		Config: cfg,
	}

	if cfg.History.IsEnabled() {
		database, err := db.OpenPath(ctx, proj.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		proj.DB = database
	}

	if err := logging.Init(root); err != nil {
		logging.Warn("failed to initialize logging", "error", err)
	}

	return proj, nil
}

// Create initializes a new project at dir and writes a documented default
// configuration.
func Create(ctx context.Context, dir string) (*Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDir)
	configPath := filepath.Join(configDir, ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("project already exists at %s", absDir)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := &Config{
		Project: ProjectConfig{
			Name:      filepath.Base(absDir),
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		},
	}
	if err := cfg.SaveDocumentedConfig(configPath); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	return load(ctx, absDir)
}

// HistoryPath returns the path of the run history database.
func (p *Project) HistoryPath() string {
	return filepath.Join(p.Root, ConfigDir, HistoryDB)
}

// Close releases the project's resources.
func (p *Project) Close() error {
	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}
