//go:build !debug

// Package debug provides assertions that compile to no-ops unless the debug
// build tag is set. They catch programmer errors in register programming,
// like arming a channel that is still enabled, without costing the release
// build anything.
//
// This is not considered idiomatic Go, but earns its keep in an embedded
// environment.
package debug

// Guard assertions that allocate or could panic themselves with `if
// debug.Enabled {...}`, otherwise the compiler can't drop them from release
// builds.
const Enabled = false

// Assert panics with message if b is false.
func Assert(b bool, message string) {}

// AssertErrNil panics if err is not nil.
func AssertErrNil(err error) {}
