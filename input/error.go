package input

import "errors"

// ErrExceedsLength indicates the buffer would need to grow past MaxBuffer;
// robust mode (spec §7's option 'r') always raises this instead of
// silently truncating.
var ErrExceedsLength = errors.New("input: buffer exceeds maximum length")
