package logging

import (
	"log/slog"
	"time"
)

const (
	// FieldRunID is the standardized structured logging key for launch run identifiers.
	FieldRunID = "run_id"
	// FieldWorker is the standardized structured logging key for worker slot indexes.
	FieldWorker = "worker"
	// FieldPID is the standardized structured logging key for child process IDs.
	FieldPID = "pid"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
