// Package services groups the clients that drive external processes and the
// shared error vocabulary they report failures with.
//
// The embedding and pointnet subpackages wrap the two Python entry points the
// pipelines launch. The sentinel errors here let callers distinguish a tool
// that ran and failed from a misconfigured or invalid invocation without
// parsing error strings.
package services
