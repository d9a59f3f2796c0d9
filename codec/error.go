package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownEncoding indicates an Encoding value with no registered decoder.
var ErrUnknownEncoding = errors.New("codec: unknown encoding")

// DecodeError wraps a transcoding failure with the encoding that produced it.
type DecodeError struct {
	Enc Encoding
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode failed for encoding %d: %v", e.Enc, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
