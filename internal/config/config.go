package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// LibraryDir is the root of the media collection being recovered.
	LibraryDir string `toml:"library_dir"`
	// RecoveryDir holds plans, history databases, undo ledgers, and checkpoints.
	RecoveryDir string `toml:"recovery_dir"`
	LogDir      string `toml:"log_dir"`
}

// Exiftool contains configuration for the external metadata tool.
type Exiftool struct {
	Binary       string `toml:"binary"`
	ProbeTimeout int    `toml:"probe_timeout"`
	WriteTimeout int    `toml:"write_timeout"`
}

// Translation maps one host path-naming convention onto another, e.g. a Mac
// mount point onto the NAS-local path for the same volume.
type Translation struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Apply contains batch applier tuning.
type Apply struct {
	CheckpointInterval int    `toml:"checkpoint_interval"`
	ConfidenceFloor    string `toml:"confidence_floor"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chronofix.
type Config struct {
	Paths    Paths         `toml:"paths"`
	Exiftool Exiftool      `toml:"exiftool"`
	PathMap  []Translation `toml:"path_map"`
	Apply    Apply         `toml:"apply"`
	Logging  Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chronofix/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chronofix.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the recovery and log directories. The library
// directory is only checked, never created: pointing this tool at a path
// that does not exist is an operator error, not something to paper over.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RecoveryDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CheckpointPath returns the default checkpoint file location for a named run kind.
func (c *Config) CheckpointPath(kind string) string {
	name := fmt.Sprintf(".%s_checkpoint.json", strings.TrimSpace(kind))
	return filepath.Join(c.Paths.RecoveryDir, name)
}

// HistoryDBPath returns the rename-history database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.RecoveryDir, "history.db")
}

// UndoPath returns the undo ledger location for a named run kind.
func (c *Config) UndoPath(kind string) string {
	return filepath.Join(c.Paths.RecoveryDir, fmt.Sprintf("undo_%s.json", strings.TrimSpace(kind)))
}

// ProblemLogPath returns the skipped-problematic ledger location.
func (c *Config) ProblemLogPath() string {
	return filepath.Join(c.Paths.LogDir, "skipped_problematic.jsonl")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
