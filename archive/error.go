package archive

import "fmt"

// FormatError indicates a malformed archive container.
type FormatError struct {
	Kind Kind
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("archive: malformed %v container: %s", e.Kind, e.Msg)
}
