package runstore

import "time"

// Kind identifies which launch procedure issued an invocation.
type Kind string

const (
	KindEmbed    Kind = "embed"
	KindClassify Kind = "classify"
)

// Status represents the lifecycle of a recorded invocation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Invocation records one launch of an external process.
type Invocation struct {
	ID         int64
	RunID      string
	Kind       Kind
	Slot       int
	Foreground bool
	Command    string
	PID        int
	Status     Status
	ExitCode   *int
	LogPath    string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Duration returns the wall-clock runtime when both timestamps are recorded.
func (inv *Invocation) Duration() time.Duration {
	if inv.StartedAt == nil || inv.FinishedAt == nil {
		return 0
	}
	return inv.FinishedAt.Sub(*inv.StartedAt)
}
