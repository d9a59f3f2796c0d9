package vm

import "errors"

// ErrNoProgram indicates Run was called on a nil Program.
var ErrNoProgram = errors.New("vm: interpreter has no program")
