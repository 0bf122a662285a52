// Package launcher drives the staggered image-embedding extraction run.
//
// The plan is fixed: five background invocations of the inference entry
// point separated by a stagger delay, a longer settle delay, then one
// foreground invocation whose exit code decides the run. All six share the
// same arguments and output directory; work sharding is the external
// framework's responsibility. The launcher adds what the shell original
// lacked: a single-instance lock, a free-space preflight, per-invocation
// logs and run records, and an optional readiness gate that shortens the
// fixed delays when the output directory shows activity.
package launcher
