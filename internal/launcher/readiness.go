package launcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoSignal indicates the readiness wait timed out without observing
// activity in the watched directory.
var ErrNoSignal = errors.New("no readiness signal")

// waitForActivity blocks until a file is created or written inside dir,
// signalling that the previously launched worker reached its output phase.
// It returns ErrNoSignal when the timeout elapses first.
func waitForActivity(ctx context.Context, dir string, timeout time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return ErrNoSignal
		case event, ok := <-watcher.Events:
			if !ok {
				return ErrNoSignal
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrNoSignal
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}
