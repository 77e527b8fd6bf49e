package puzzle

import (
	"errors"
	"fmt"
)

// ErrDuplicate is matched by every DuplicateError.
var ErrDuplicate = errors.New("puzzle with this URL already exists")

// NetworkError describes a failure to retrieve a page.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError describes page or store content that is not in the expected
// shape. Line is 1-based and zero when the source is not line oriented.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DuplicateError reports a URL that is already present in the store.
type DuplicateError struct {
	URL string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, ErrDuplicate)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// IOError describes a file that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
