package embedding

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"axon/internal/services"
)

var commandContext = exec.CommandContext

// Overrides carries the dotted configuration overrides passed after the
// --inference flag. Order is fixed so every invocation issues an identical
// command line.
type Overrides struct {
	NumCPUs         int
	InPlanes        int
	OutPlanes       int
	InputPath       string
	OutputPath      string
	Checkpoint      string
	SamplesPerBatch int
}

// Invocation describes a single launch of the inference entry point.
type Invocation struct {
	ConfigBase string
	ConfigFile string
	Overrides  Overrides
	// LogPath receives the combined stdout/stderr of the child.
	LogPath string
}

// Process is a started inference child process.
type Process struct {
	pid  int
	args []string

	cmd     *exec.Cmd
	logFile *os.File
}

// PID returns the child process ID.
func (p *Process) PID() int { return p.pid }

// Args returns the full command line, interpreter included.
func (p *Process) Args() []string { return p.args }

// Wait blocks until the process exits and releases its log file.
func (p *Process) Wait() error {
	err := p.cmd.Wait()
	if p.logFile != nil {
		_ = p.logFile.Close()
	}
	return err
}

// Signal delivers sig to the process group.
func (p *Process) Signal(sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return fmt.Errorf("unsupported signal %v", sig)
	}
	return unix.Kill(-p.pid, s)
}

// Client defines inference launch behaviour.
type Client interface {
	Start(ctx context.Context, inv Invocation) (*Process, error)
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

// WithEnv appends environment variables (KEY=VALUE) for launched processes.
func WithEnv(env ...string) Option {
	return func(c *CLI) {
		c.env = append(c.env, env...)
	}
}

// WithWorkDir sets the working directory for launched processes.
func WithWorkDir(dir string) Option {
	return func(c *CLI) {
		c.workDir = dir
	}
}

// CLI launches the external inference entry point.
type CLI struct {
	interpreter string
	script      string
	workDir     string
	env         []string
}

// NewCLI constructs a CLI client for the given entry-point script.
func NewCLI(script string, opts ...Option) *CLI {
	cli := &CLI{interpreter: "python3", script: script}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// BuildArgs composes the full argument vector for an invocation.
func (c *CLI) BuildArgs(inv Invocation) []string {
	o := inv.Overrides
	return []string{
		c.script,
		"--config-base", inv.ConfigBase,
		"--config-file", inv.ConfigFile,
		"--inference",
		"SYSTEM.NUM_CPUS", strconv.Itoa(o.NumCPUs),
		"MODEL.IN_PLANES", strconv.Itoa(o.InPlanes),
		"MODEL.OUT_PLANES", strconv.Itoa(o.OutPlanes),
		"INFERENCE.INPUT_PATH", o.InputPath,
		"INFERENCE.OUTPUT_PATH", o.OutputPath,
		"INFERENCE.CHECKPOINT_PATH", o.Checkpoint,
		"INFERENCE.SAMPLES_PER_BATCH", strconv.Itoa(o.SamplesPerBatch),
	}
}

// Start launches one inference process. The child is placed in its own
// process group so the whole tree can be signalled on cancellation.
func (c *CLI) Start(ctx context.Context, inv Invocation) (*Process, error) {
	if inv.ConfigBase == "" || inv.ConfigFile == "" {
		return nil, services.Wrap(services.ErrValidation, "embedding", "start", "config base and config file required", nil)
	}
	if inv.Overrides.OutputPath == "" {
		return nil, services.Wrap(services.ErrValidation, "embedding", "start", "output path required", nil)
	}

	args := c.BuildArgs(inv)
	cmd := commandContext(ctx, c.interpreter, args...) //nolint:gosec
	cmd.Dir = c.workDir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var logFile *os.File
	var sink io.Writer = io.Discard
	if inv.LogPath != "" {
		f, err := os.OpenFile(inv.LogPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open invocation log: %w", err)
		}
		logFile = f
		sink = f
	}
	cmd.Stdout = sink
	cmd.Stderr = sink

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, services.Wrap(services.ErrExternalTool, "embedding", "start", "", err)
	}

	return &Process{
		pid:     cmd.Process.Pid,
		args:    append([]string{c.interpreter}, args...),
		cmd:     cmd,
		logFile: logFile,
	}, nil
}

var _ Client = (*CLI)(nil)
