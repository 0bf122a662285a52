// Package main hosts the axon CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the launch procedures of the
// connectomics pipelines: environment setup, library patching, the staggered
// embedding extraction, the point-cloud classification test, run-history
// inspection, and volume evaluation. It centralizes configuration resolution
// and structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
