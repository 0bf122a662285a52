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

// Paths contains directory configuration shared by every command.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Proxy contains the HTTP(S) proxy inherited by every launched process.
type Proxy struct {
	HTTPSProxy string `toml:"https_proxy"`
}

// Python contains interpreter settings used by setup, patch, and launch steps.
type Python struct {
	Interpreter string `toml:"interpreter"`
}

// Setup contains the dependency installation procedure.
type Setup struct {
	UpgradePip bool     `toml:"upgrade_pip"`
	Packages   []string `toml:"packages"`
	Strict     bool     `toml:"strict"`
}

// Patch contains the sharded-skeleton library substitution.
type Patch struct {
	Source string `toml:"source"`
	Module string `toml:"module"`
}

// Embedding contains the image-embedding inference launch plan.
type Embedding struct {
	Script          string `toml:"script"`
	WorkDir         string `toml:"work_dir"`
	ConfigBase      string `toml:"config_base"`
	ConfigFile      string `toml:"config_file"`
	InputPath       string `toml:"input_path"`
	OutputPath      string `toml:"output_path"`
	Checkpoint      string `toml:"checkpoint"`
	NumCPUs         int    `toml:"num_cpus"`
	InPlanes        int    `toml:"in_planes"`
	OutPlanes       int    `toml:"out_planes"`
	SamplesPerBatch int    `toml:"samples_per_batch"`

	Workers          int  `toml:"workers"`
	StaggerSeconds   int  `toml:"stagger_seconds"`
	SettleSeconds    int  `toml:"settle_seconds"`
	Readiness        bool `toml:"readiness"`
	ReadinessTimeout int  `toml:"readiness_timeout_seconds"`
	MinFreeGiB       int  `toml:"min_free_gib"`
}

// Classification contains the point-cloud classification test invocation.
type Classification struct {
	ProjectDir      string  `toml:"project_dir"`
	Script          string  `toml:"script"`
	Model           string  `toml:"model"`
	LogDir          string  `toml:"log_dir"`
	NumGPUs         int     `toml:"num_gpus"`
	BatchSize       int     `toml:"batch_size"`
	LearningRate    float64 `toml:"learning_rate"`
	NumPoint        int     `toml:"num_point"`
	ImageFeatureDir string  `toml:"image_feature_dir"`
	Package         string  `toml:"package"`
}

// Checkpoint contains object-storage settings for checkpoint retrieval.
type Checkpoint struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PathStyle bool   `toml:"path_style"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for axon.
//
// Configuration sections by subsystem:
//   - Paths: log and checkpoint-cache directories
//   - Proxy: HTTPS proxy exported to child processes
//   - Python: interpreter used for setup, patching, and launches
//   - Setup: pip upgrade and package installation steps
//   - Patch: sharded.py substitution inside the volumetric library
//   - Embedding: the six-invocation inference launch plan
//   - Classification: the point-cloud classification test
//   - Checkpoint: S3-compatible checkpoint retrieval
//   - Logging: log format, level, and rotation
type Config struct {
	Paths          Paths          `toml:"paths"`
	Proxy          Proxy          `toml:"proxy"`
	Python         Python         `toml:"python"`
	Setup          Setup          `toml:"setup"`
	Patch          Patch          `toml:"patch"`
	Embedding      Embedding      `toml:"embedding"`
	Classification Classification `toml:"classification"`
	Checkpoint     Checkpoint     `toml:"checkpoint"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/axon/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("axon.toml")
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

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	if strings.TrimSpace(target) == "" {
		return errors.New("target path required")
	}
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories axon needs at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.CacheDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath expands a leading tilde to the user home directory.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Clean(trimmed), nil
}
