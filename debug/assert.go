//go:build debug

package debug

// Guard assertions that allocate or could panic themselves with `if
// debug.Enabled {...}`, otherwise the compiler can't drop them from release
// builds.
const Enabled = true

func Assert(b bool, message string) {
	if !b {
		panic(message)
	}
}

func AssertErrNil(err error) {
	if err != nil {
		panic(err)
	}
}
