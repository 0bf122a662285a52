package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Requirement defines an external dependency axon relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Defaults returns the binaries the launch procedures expect on PATH.
func Defaults(interpreter string) []Requirement {
	if strings.TrimSpace(interpreter) == "" {
		interpreter = "python3"
	}
	return []Requirement{
		{Name: "Python", Command: interpreter, Description: "runs the inference framework and the classification test"},
		{Name: "tmux", Command: "tmux", Description: "terminal multiplexer used for long-running launch sessions", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckModule reports whether a Python module is importable by the interpreter.
func CheckModule(ctx context.Context, interpreter, module string) Status {
	status := Status{
		Name:        module,
		Command:     interpreter,
		Description: fmt.Sprintf("python module %s", module),
	}
	if strings.TrimSpace(module) == "" {
		status.Detail = "module not configured"
		return status
	}
	out, err := commandContext(ctx, interpreter, "-c", fmt.Sprintf("import %s", module)).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		status.Detail = detail
		return status
	}
	status.Available = true
	return status
}
