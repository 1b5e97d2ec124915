package labels

import "fmt"

// ParseError reports a malformed annotation and where it was found. Line is 1-based;
// it is 0 when the problem concerns the file as a whole.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}
