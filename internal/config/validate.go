package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePython(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateClassification(); err != nil {
		return err
	}
	if err := c.validateCheckpoint(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePython() error {
	if strings.TrimSpace(c.Python.Interpreter) == "" {
		return errors.New("python.interpreter must be set")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.Workers < 1 {
		return errors.New("embedding.workers must be at least 1")
	}
	if c.Embedding.NumCPUs < 1 {
		return errors.New("embedding.num_cpus must be at least 1")
	}
	if c.Embedding.OutPlanes < 1 {
		return errors.New("embedding.out_planes must be at least 1")
	}
	if c.Embedding.InPlanes < 1 {
		return errors.New("embedding.in_planes must be at least 1")
	}
	if c.Embedding.SamplesPerBatch < 1 {
		return errors.New("embedding.samples_per_batch must be at least 1")
	}
	return nil
}

func (c *Config) validateClassification() error {
	if c.Classification.NumGPUs < 1 {
		return errors.New("classification.num_gpus must be at least 1")
	}
	if c.Classification.BatchSize < 1 {
		return errors.New("classification.batch_size must be at least 1")
	}
	if c.Classification.LearningRate <= 0 {
		return errors.New("classification.learning_rate must be positive")
	}
	if c.Classification.NumPoint < 1 {
		return errors.New("classification.num_point must be at least 1")
	}
	return nil
}

func (c *Config) validateCheckpoint() error {
	if !strings.HasPrefix(c.Embedding.Checkpoint, "s3://") {
		return nil
	}
	if strings.TrimSpace(c.Checkpoint.Endpoint) == "" && strings.TrimSpace(c.Checkpoint.Region) == "" {
		return errors.New("checkpoint.endpoint or checkpoint.region must be set for s3:// checkpoints")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
