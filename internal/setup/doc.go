// Package setup installs the Python dependencies the launch procedures need.
//
// The original procedure shelled out to pip with a proxy exported and ignored
// every failure. The installer keeps the continue-on-error default but records
// each step's outcome so the operator can see what actually happened; strict
// mode aborts on the first failure.
package setup
