// SPDX-License-Identifier: EPL-2.0

package mpeg

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument reports an invalid value passed by the caller.
	ErrArgument = errors.New("mpeg: invalid argument")
	// ErrSourceIO reports a failure of the byte source.
	ErrSourceIO = errors.New("mpeg: source read failed")
	// ErrSinkIO reports a failure of the byte sink.
	ErrSinkIO = errors.New("mpeg: sink write failed")
	// ErrFormat reports an unrecoverable bitstream or codec failure.
	ErrFormat = errors.New("mpeg: format error")
	// ErrResource reports that a buffer could not grow.
	ErrResource = errors.New("mpeg: resource exhausted")
	// ErrState reports an operation not valid in the current lifecycle state.
	ErrState = errors.New("mpeg: invalid state")
)

// FormatError carries the codec diagnostic of a fatal decode or encode
// failure. It matches ErrFormat with errors.Is.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mpeg: %s: format error", e.Op)
	}
	return fmt.Sprintf("mpeg: %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }
