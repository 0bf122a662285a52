// Package pointnet wraps the external point-cloud classification test script.
//
// The test runs once, synchronously, inside its own project directory with a
// fixed set of hyperparameters pointing at a precomputed image-feature
// directory. A missing project directory aborts before anything launches.
package pointnet
