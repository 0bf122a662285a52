package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizePatch(); err != nil {
		return err
	}
	if err := c.normalizeEmbedding(); err != nil {
		return err
	}
	if err := c.normalizeClassification(); err != nil {
		return err
	}
	c.normalizeProxy()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProxy() {
	c.Proxy.HTTPSProxy = strings.TrimSpace(c.Proxy.HTTPSProxy)
	if c.Proxy.HTTPSProxy == "" {
		c.Proxy.HTTPSProxy = strings.TrimSpace(os.Getenv("https_proxy"))
	}
	if c.Python.Interpreter == "" {
		c.Python.Interpreter = defaultPythonInterpreter
	}
}

func (c *Config) normalizePatch() error {
	var err error
	if c.Patch.Source, err = expandPath(c.Patch.Source); err != nil {
		return fmt.Errorf("patch.source: %w", err)
	}
	c.Patch.Module = strings.TrimSpace(c.Patch.Module)
	if c.Patch.Module == "" {
		c.Patch.Module = defaultPatchModule
	}
	return nil
}

func (c *Config) normalizeEmbedding() error {
	var err error
	for name, field := range map[string]*string{
		"embedding.script":      &c.Embedding.Script,
		"embedding.work_dir":    &c.Embedding.WorkDir,
		"embedding.config_base": &c.Embedding.ConfigBase,
		"embedding.config_file": &c.Embedding.ConfigFile,
		"embedding.input_path":  &c.Embedding.InputPath,
		"embedding.output_path": &c.Embedding.OutputPath,
	} {
		if *field, err = expandPath(*field); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	// Checkpoint may be an s3:// URL; expand only local paths.
	if !strings.HasPrefix(c.Embedding.Checkpoint, "s3://") {
		if c.Embedding.Checkpoint, err = expandPath(c.Embedding.Checkpoint); err != nil {
			return fmt.Errorf("embedding.checkpoint: %w", err)
		}
	}
	if c.Embedding.Workers <= 0 {
		c.Embedding.Workers = defaultEmbeddingWorkers
	}
	if c.Embedding.StaggerSeconds <= 0 {
		c.Embedding.StaggerSeconds = defaultStaggerSeconds
	}
	if c.Embedding.SettleSeconds <= 0 {
		c.Embedding.SettleSeconds = defaultSettleSeconds
	}
	if c.Embedding.ReadinessTimeout <= 0 {
		c.Embedding.ReadinessTimeout = defaultReadinessTimeout
	}
	return nil
}

func (c *Config) normalizeClassification() error {
	var err error
	if c.Classification.ProjectDir, err = expandPath(c.Classification.ProjectDir); err != nil {
		return fmt.Errorf("classification.project_dir: %w", err)
	}
	if c.Classification.ImageFeatureDir, err = expandPath(c.Classification.ImageFeatureDir); err != nil {
		return fmt.Errorf("classification.image_feature_dir: %w", err)
	}
	if strings.TrimSpace(c.Classification.Script) == "" {
		c.Classification.Script = defaultClassificationScript
	}
	if strings.TrimSpace(c.Classification.Model) == "" {
		c.Classification.Model = defaultClassificationModel
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
