package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"axon/internal/logging"
)

var commandContext = exec.CommandContext

// StepResult records the outcome of a single installation step.
type StepResult struct {
	Name   string
	Args   []string
	Output string
	Err    error
}

// Options configures the installer.
type Options struct {
	Interpreter string
	HTTPSProxy  string
	UpgradePip  bool
	Packages    []string
	// Strict aborts on the first failed step instead of continuing.
	Strict bool
}

// Installer runs the dependency installation procedure.
type Installer struct {
	opts   Options
	logger *slog.Logger
}

// NewInstaller constructs an installer.
func NewInstaller(opts Options, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(opts.Interpreter) == "" {
		opts.Interpreter = "python3"
	}
	return &Installer{opts: opts, logger: logger}
}

// Run executes every installation step in order. Failed steps are recorded
// and, unless Strict is set, execution continues with the next step.
func (i *Installer) Run(ctx context.Context) ([]StepResult, error) {
	steps := i.plan()
	results := make([]StepResult, 0, len(steps))

	for _, step := range steps {
		result := i.runStep(ctx, step)
		results = append(results, result)
		if result.Err != nil {
			i.logger.Warn("setup step failed",
				logging.String("step", result.Name),
				logging.Error(result.Err))
			if i.opts.Strict {
				return results, fmt.Errorf("setup step %q: %w", result.Name, result.Err)
			}
			continue
		}
		i.logger.Info("setup step completed", logging.String("step", result.Name))
	}
	return results, nil
}

type step struct {
	name string
	args []string
}

func (i *Installer) plan() []step {
	steps := make([]step, 0, len(i.opts.Packages)+1)
	if i.opts.UpgradePip {
		steps = append(steps, step{
			name: "upgrade pip",
			args: []string{"-m", "pip", "install", "--upgrade", "pip"},
		})
	}
	for _, pkg := range i.opts.Packages {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		steps = append(steps, step{
			name: "install " + pkg,
			args: []string{"-m", "pip", "install", pkg},
		})
	}
	return steps
}

func (i *Installer) runStep(ctx context.Context, s step) StepResult {
	cmd := commandContext(ctx, i.opts.Interpreter, s.args...)
	cmd.Env = i.environ()
	out, err := cmd.CombinedOutput()
	result := StepResult{
		Name:   s.name,
		Args:   append([]string{i.opts.Interpreter}, s.args...),
		Output: strings.TrimSpace(string(out)),
	}
	if err != nil {
		result.Err = fmt.Errorf("run %s: %w", s.name, err)
	}
	return result
}

// environ returns the process environment with the proxy applied.
func (i *Installer) environ() []string {
	env := os.Environ()
	proxy := strings.TrimSpace(i.opts.HTTPSProxy)
	if proxy == "" {
		return env
	}
	return append(env, "https_proxy="+proxy, "HTTPS_PROXY="+proxy)
}

// Failed returns the subset of results that errored.
func Failed(results []StepResult) []StepResult {
	var failed []StepResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
