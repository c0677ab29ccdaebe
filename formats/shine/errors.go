// SPDX-License-Identifier: EPL-2.0

package shine

import "errors"

var (
	ErrSampleRate     = errors.New("shine: sample rate not supported by MPEG layer III")
	ErrBitRate        = errors.New("shine: bit rate not supported at this sample rate")
	ErrChannels       = errors.New("shine: only mono and stereo input is supported")
	ErrNotInitialized = errors.New("shine: encoder not initialized")
	ErrFlushed        = errors.New("shine: encoder already flushed")
	ErrClosed         = errors.New("shine: encoder closed")
)
