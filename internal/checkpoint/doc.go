// Package checkpoint resolves model checkpoint references to local files.
//
// Inference checkpoints are opaque inputs to the launchers; they may sit on
// disk or in S3-compatible object storage. The resolver validates local paths
// and fetches s3:// references into a local cache via the AWS transfer
// manager before any process launches.
package checkpoint
