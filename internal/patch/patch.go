package patch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"axon/internal/logging"
)

var commandContext = exec.CommandContext

// ErrNotApplied indicates no backup exists, so there is nothing to revert.
var ErrNotApplied = errors.New("patch not applied")

const backupSuffix = ".orig"

// Options configures the patcher.
type Options struct {
	// Interpreter locates the installed module to be replaced.
	Interpreter string
	// Module is the dotted import path of the module to override.
	Module string
	// Source is the local replacement file.
	Source string
}

// State describes the current patch state of the installed module.
type State struct {
	Target     string
	BackupPath string
	Applied    bool
	InSync     bool
}

// Patcher replaces one file inside an installed third-party library.
type Patcher struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a patcher.
func New(opts Options, logger *slog.Logger) *Patcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(opts.Interpreter) == "" {
		opts.Interpreter = "python3"
	}
	return &Patcher{opts: opts, logger: logger}
}

// Locate resolves the filesystem path of the installed module.
func (p *Patcher) Locate(ctx context.Context) (string, error) {
	module := strings.TrimSpace(p.opts.Module)
	if module == "" {
		return "", errors.New("patch module required")
	}
	script := fmt.Sprintf("import %s as m; print(m.__file__)", module)
	out, err := commandContext(ctx, p.opts.Interpreter, "-c", script).Output()
	if err != nil {
		return "", fmt.Errorf("locate module %s: %w", module, err)
	}
	target := strings.TrimSpace(string(out))
	if target == "" {
		return "", fmt.Errorf("locate module %s: interpreter returned no path", module)
	}
	// Patch the source, not a stale bytecode artifact.
	target = strings.TrimSuffix(target, "c")
	if !strings.HasSuffix(target, ".py") {
		return "", fmt.Errorf("locate module %s: unexpected path %q", module, target)
	}
	return target, nil
}

// Apply backs up the installed module and copies the replacement over it.
// Re-applying an already patched module refreshes the target without
// clobbering the original backup.
func (p *Patcher) Apply(ctx context.Context) (State, error) {
	source := strings.TrimSpace(p.opts.Source)
	if source == "" {
		return State{}, errors.New("patch source required")
	}
	if _, err := os.Stat(source); err != nil {
		return State{}, fmt.Errorf("patch source: %w", err)
	}

	target, err := p.Locate(ctx)
	if err != nil {
		return State{}, err
	}
	backup := target + backupSuffix

	if _, err := os.Stat(backup); errors.Is(err, os.ErrNotExist) {
		if err := copyFile(target, backup); err != nil {
			return State{}, fmt.Errorf("back up %s: %w", target, err)
		}
	} else if err != nil {
		return State{}, fmt.Errorf("stat backup: %w", err)
	}

	if err := copyFile(source, target); err != nil {
		return State{}, fmt.Errorf("apply patch to %s: %w", target, err)
	}

	p.logger.Info("patched installed module",
		logging.String("module", p.opts.Module),
		logging.String("target", target))

	return State{Target: target, BackupPath: backup, Applied: true, InSync: true}, nil
}

// Revert restores the original module from its backup and removes the backup.
func (p *Patcher) Revert(ctx context.Context) (State, error) {
	target, err := p.Locate(ctx)
	if err != nil {
		return State{}, err
	}
	backup := target + backupSuffix

	if _, err := os.Stat(backup); errors.Is(err, os.ErrNotExist) {
		return State{Target: target, BackupPath: backup}, ErrNotApplied
	} else if err != nil {
		return State{}, fmt.Errorf("stat backup: %w", err)
	}

	if err := copyFile(backup, target); err != nil {
		return State{}, fmt.Errorf("restore %s: %w", target, err)
	}
	if err := os.Remove(backup); err != nil {
		return State{}, fmt.Errorf("remove backup: %w", err)
	}

	p.logger.Info("reverted installed module",
		logging.String("module", p.opts.Module),
		logging.String("target", target))

	return State{Target: target, BackupPath: backup}, nil
}

// Status reports whether the installed module currently matches the
// replacement source.
func (p *Patcher) Status(ctx context.Context) (State, error) {
	target, err := p.Locate(ctx)
	if err != nil {
		return State{}, err
	}
	backup := target + backupSuffix

	state := State{Target: target, BackupPath: backup}
	if _, err := os.Stat(backup); err == nil {
		state.Applied = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return State{}, fmt.Errorf("stat backup: %w", err)
	}

	if p.opts.Source != "" {
		same, err := filesEqual(p.opts.Source, target)
		if err == nil {
			state.InSync = same
		}
	}
	return state, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func filesEqual(a, b string) (bool, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}
