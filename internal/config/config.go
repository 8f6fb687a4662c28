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
	// DataDir holds original sources and the published output.
	DataDir string `toml:"data_dir"`
	// CacheDir holds intermediate stage files and downloaded audio.
	// Defaults to data_dir/cache.
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
	// EntityDataDir holds the persons/factions reference JSON for entity
	// linking. Defaults to data_dir/entities.
	EntityDataDir string `toml:"entity_data_dir"`
}

// Merge contains the alignment scoring parameters.
type Merge struct {
	SpeakerWeight float64 `toml:"speaker_weight"`
	TitleWeight   float64 `toml:"title_weight"`
	MergePenalty  float64 `toml:"merge_penalty"`
	SplitPenalty  float64 `toml:"split_penalty"`
}

// Aligner contains configuration for the external forced-alignment engine.
type Aligner struct {
	// Binary is the engine executable (invoked as
	// `<binary> <audio> <taskfile> <config> <output>`).
	Binary string `toml:"binary"`
	// Language is the ISO 639-3 language code passed to the engine.
	Language string `toml:"language"`
	// TimeoutSeconds bounds one engine invocation.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// MinCacheGiB is the free space required in the cache dir before
	// audio is downloaded for alignment.
	MinCacheGiB int `toml:"min_cache_gib"`
	// DownloadTimeoutSeconds bounds one audio download.
	DownloadTimeoutSeconds int `toml:"download_timeout_seconds"`
	// Force re-aligns items whose sentences already carry timecodes.
	Force bool `toml:"force"`
}

// NER contains configuration for the entity disambiguation service.
type NER struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains pipeline iteration settings.
type Workflow struct {
	// Period restricts processing to sessions of one electoral period;
	// zero processes everything.
	Period int `toml:"period"`
	// SessionPattern optionally restricts processing to sessions whose
	// identifier matches this regular expression.
	SessionPattern string `toml:"session_pattern"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Merge    Merge    `toml:"merge"`
	Aligner  Aligner  `toml:"aligner"`
	NER      NER      `toml:"ner"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/plenum/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("plenum.toml")
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

// EnsureDirectories creates the directories the pipeline needs to run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MinCacheBytes converts the aligner cache floor to bytes.
func (c *Config) MinCacheBytes() uint64 {
	return uint64(c.Aligner.MinCacheGiB) * 1024 * 1024 * 1024
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
