// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrLostSync           = errors.New("mp3: lost frame sync")
	ErrUnsupportedLayer   = errors.New("mp3: only layer III is supported")
	ErrUnsupportedVersion = errors.New("mp3: MPEG 2.5 is not supported")
	ErrSynthesis          = errors.New("mp3: frame synthesis failed")
	ErrSynthesisPanic     = errors.New("mp3: frame synthesis panicked")
	ErrNoFrames           = errors.New("mp3: no decodable frame found")
)
