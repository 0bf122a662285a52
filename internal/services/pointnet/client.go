package pointnet

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"axon/internal/services"
)

var commandContext = exec.CommandContext

// Params carries the classification test hyperparameters.
type Params struct {
	Model        string
	LogDir       string
	NumGPUs      int
	BatchSize    int
	LearningRate float64
	ImageFeature string
	NumPoint     int
}

// Client defines classification test behaviour.
type Client interface {
	Run(ctx context.Context, params Params, output io.Writer) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithInterpreter overrides the default Python interpreter.
func WithInterpreter(interpreter string) Option {
	return func(c *CLI) {
		if interpreter != "" {
			c.interpreter = interpreter
		}
	}
}

// WithEnv appends environment variables (KEY=VALUE) for the launched process.
func WithEnv(env ...string) Option {
	return func(c *CLI) {
		c.env = append(c.env, env...)
	}
}

// CLI runs the external point-cloud classification test script.
type CLI struct {
	interpreter string
	script      string
	projectDir  string
	env         []string
}

// NewCLI constructs a CLI client rooted at the external project directory.
func NewCLI(projectDir, script string, opts ...Option) *CLI {
	cli := &CLI{interpreter: "python3", script: script, projectDir: projectDir}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// BuildArgs composes the argument vector for the test script.
func (c *CLI) BuildArgs(params Params) []string {
	return []string{
		c.script,
		"--model", params.Model,
		"--log_dir", params.LogDir,
		"--num_gpus", strconv.Itoa(params.NumGPUs),
		"--batch_size", strconv.Itoa(params.BatchSize),
		"--learning_rate", strconv.FormatFloat(params.LearningRate, 'f', -1, 64),
		"--image_feature", params.ImageFeature,
		"--num_point", strconv.Itoa(params.NumPoint),
	}
}

// Run executes the classification test synchronously. It fails before
// launching anything when the project directory does not exist; that is the
// one hard precondition the procedure has always had.
func (c *CLI) Run(ctx context.Context, params Params, output io.Writer) error {
	if params.Model == "" {
		return services.Wrap(services.ErrValidation, "classification", "run", "model name required", nil)
	}
	info, err := os.Stat(c.projectDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "classification", "run", "project directory", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "classification", "run",
			fmt.Sprintf("project directory %q is not a directory", c.projectDir), nil)
	}

	if output == nil {
		output = io.Discard
	}

	args := c.BuildArgs(params)
	cmd := commandContext(ctx, c.interpreter, args...) //nolint:gosec
	cmd.Dir = c.projectDir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "classification", "run", "test script failed", err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
