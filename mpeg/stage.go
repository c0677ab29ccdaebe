// SPDX-License-Identifier: EPL-2.0

package mpeg

import (
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultStageSize is the default capacity of the input stage.
	DefaultStageSize = 5 * 8192
	// MinStageSize is the smallest accepted input stage. It holds the
	// largest non free-format MPEG audio frame.
	MinStageSize = 4096
)

// inputStage holds compressed bytes between source reads. buf[start:end]
// is the part the codec has not consumed yet.
type inputStage struct {
	buf   []byte
	start int
	end   int
	eof   bool
}

func newInputStage(size int) *inputStage {
	return &inputStage{buf: make([]byte, size)}
}

func (s *inputStage) staged() []byte { return s.buf[s.start:s.end] }

func (s *inputStage) carry() int { return s.end - s.start }

// consume advances the start cursor by n bytes of the staged window.
func (s *inputStage) consume(n int) {
	s.start = min(s.start+max(n, 0), s.end)
}

// fill moves the unconsumed tail to the front and reads once from r into
// the free space. A tail that fills the whole stage is dropped and its
// length returned as dropped. eof is set once r has no more data.
func (s *inputStage) fill(r io.Reader) (n, dropped int, err error) {
	if s.eof {
		return 0, 0, nil
	}

	carry := s.carry()
	if carry >= len(s.buf) {
		dropped, carry = carry, 0
	} else if carry > 0 && s.start > 0 {
		copy(s.buf, s.buf[s.start:s.end])
	}
	s.start, s.end = 0, carry

	n, err = r.Read(s.buf[s.end:])
	if n < 0 || n > len(s.buf)-s.end {
		return 0, dropped, fmt.Errorf("read returned %d bytes: %w", n, ErrSourceIO)
	}
	s.end += n

	switch {
	case errors.Is(err, io.EOF):
		s.eof = true
		return n, dropped, nil
	case err != nil:
		return n, dropped, fmt.Errorf("%w: %w", ErrSourceIO, err)
	case n == 0:
		s.eof = true
	}
	return n, dropped, nil
}
