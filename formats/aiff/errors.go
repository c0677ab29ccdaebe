// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedBitDepth covers 8-bit and odd sample sizes.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit AIFF is supported")

	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
