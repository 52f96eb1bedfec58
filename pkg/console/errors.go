package console

import (
	"errors"
	"fmt"
)

// ErrorCode is the numeric code reported in a failure acknowledgement.
type ErrorCode uint32

// Error codes, reported as E<code>.
const (
	// ErrNotSelector indicates the first parameter is not a selector.
	ErrNotSelector ErrorCode = iota
	// ErrLineOverflow indicates the input line exceeded the buffer.
	ErrLineOverflow
	// ErrNoParameter indicates an empty line reached the parser.
	ErrNoParameter
	// ErrTooManyParameters indicates more parameters than supported.
	ErrTooManyParameters
	// ErrInvalidParameterType indicates an invalid or misplaced tag,
	// or a value that failed to decode.
	ErrInvalidParameterType
	// ErrParameterTooLong indicates a single parameter is too long.
	ErrParameterTooLong
)

var errorCodeText = map[ErrorCode]string{
	ErrNotSelector:          "first parameter is not a selector",
	ErrLineOverflow:         "line too long",
	ErrNoParameter:          "no parameter",
	ErrTooManyParameters:    "too many parameters",
	ErrInvalidParameterType: "invalid parameter type",
	ErrParameterTooLong:     "parameter too long",
}

// Error implements error.
func (c ErrorCode) Error() string {
	if text, ok := errorCodeText[c]; ok {
		return fmt.Sprintf("E%d: %s", uint32(c), text)
	}
	return fmt.Sprintf("E%d", uint32(c))
}

// ParseError locates a parse failure within the line.
type ParseError struct {
	Code ErrorCode
	// Index is the parameter index the failure relates to.
	Index int
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parameter %d: %v", e.Index, e.Code)
}

// Unwrap returns the ErrorCode so errors.Is matches the codes.
func (e *ParseError) Unwrap() error {
	return e.Code
}

// CodeOf extracts the ErrorCode carried by err.
func CodeOf(err error) (ErrorCode, bool) {
	var code ErrorCode
	if errors.As(err, &code) {
		return code, true
	}
	return 0, false
}

// ErrNoData is returned by Port.ReadByte when nothing is pending.
var ErrNoData = errors.New("no data")
