package kvfile

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDelimiter is returned when opening a store without a delimiter
	ErrEmptyDelimiter = errors.New("delimiter is empty")

	// ErrParse matches every *ParseError with errors.Is
	ErrParse = errors.New("failed: parser error")

	// ErrInvalidText is wrapped in *IOError when the file is not valid UTF-8
	ErrInvalidText = errors.New("file is not valid UTF-8 text")
)

// IOError is returned when the backing file can't be read or written
type IOError struct {
	// "read" or "write"
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("kvfile: %s '%s' failed: %s", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a line doesn't split into a key and a value
type ParseError struct {
	Path string
	// 1-based line number
	Line int
	// number of fields the line split into (anything but 2 is an error)
	Segments int
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("kvfile: line %d: %s: expected 2 fields, got %d", e.Line, ErrParse, e.Segments)
	}
	return fmt.Sprintf("kvfile: %s:%d: %s: expected 2 fields, got %d", e.Path, e.Line, ErrParse, e.Segments)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
