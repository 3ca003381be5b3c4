package porter

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// UnknownPatternError reports a line that no declaration shape matched. It is
// only produced in strict mode; otherwise such lines are passed through as
// comments.
type UnknownPatternError struct {
	File    string
	Line    int
	Pattern string
	Text    string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("unknown pattern at %s:%d\npattern: %s\nline: %s", e.File, e.Line, e.Pattern, e.Text)
}

func unknownPattern(file string, line int, pattern, text string) error {
	return errors.WithHint(
		errors.WithStack(&UnknownPatternError{File: file, Line: line, Pattern: pattern, Text: text}),
		"run without strict mode to keep the line as a comment",
	)
}

// IsUnknownPattern reports whether err carries an UnknownPatternError.
func IsUnknownPattern(err error) bool {
	var upe *UnknownPatternError
	return errors.As(err, &upe)
}
