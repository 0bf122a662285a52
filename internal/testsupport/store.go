package testsupport

import (
	"context"
	"testing"

	"axon/internal/config"
	"axon/internal/runstore"
)

// MustOpenStore opens a runstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewInvocation records a pending invocation for tests using the provided store.
func NewInvocation(t testing.TB, store *runstore.Store, runID string, kind runstore.Kind, slot int, foreground bool, command string) *runstore.Invocation {
	t.Helper()

	inv, err := store.NewInvocation(context.Background(), runID, kind, slot, foreground, command, "")
	if err != nil {
		t.Fatalf("store.NewInvocation: %v", err)
	}
	return inv
}
