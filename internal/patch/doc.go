// Package patch replaces the skeleton sharding module inside the installed
// volumetric-data library with a local copy.
//
// The original procedure was a blind cp over site-packages with no check and
// no way back. The patcher locates the installed module through the Python
// interpreter, keeps a .orig backup beside the target, and can revert the
// substitution or report whether the installed file matches the local source.
package patch
