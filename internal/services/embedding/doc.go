// Package embedding wraps the external image-embedding inference entry point.
//
// The framework's main.py accepts a base and a run configuration plus ordered
// dotted overrides after the --inference flag. The client composes that fixed
// argument vector, launches the process in its own process group, and tees its
// output to a per-invocation log file. Work sharding across concurrent
// instances happens inside the framework; the client launches and observes.
package embedding
