package decomp

import (
	"errors"
	"fmt"
)

// ErrChainDepthExceeded indicates a stream nested more compression/archive
// layers than Config.MaxDepth (spec §4.8's zmax).
var ErrChainDepthExceeded = errors.New("decomp: chain exceeds maximum depth")

// ErrCancelled is returned by Worker.Start/OpenNext (and surfaces through
// Chain.Next) once Quit has been called before the next part was assigned,
// per spec §8's "cancellation liveness" invariant: every waiter observes
// cancel() in bounded time regardless of pipe state.
var ErrCancelled = errors.New("decomp: cancelled")

// StageError wraps a single stage's decompression failure with the Kind
// that produced it, matching spec §7's "Decompression errors are
// contained inside a worker".
type StageError struct {
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("decomp: stage %v: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
