package model

import (
	"errors"
	"fmt"
)

// ErrEmptyInput marks a parse that produced zero records. It is a skipped
// run, not a failure; pipelines log it and move on.
var ErrEmptyInput = errors.New("input contained no records")

// ParseError reports malformed content in a strictly parsed format. Of the
// three formats only JSON parses strictly; CSV and XML degrade silently on
// malformed input instead of raising.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s content: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FormatError reports a requested format outside the supported set. The HTTP
// layer surfaces it as a client error.
type FormatError struct {
	Requested string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (want csv, json, or xml)", e.Requested)
}
