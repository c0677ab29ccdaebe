// SPDX-License-Identifier: EPL-2.0

package mpeg

import (
	"math"
	"testing"
)

func TestFixed_Int16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Fixed
		want int16
	}{
		{"zero", 0, 0},
		{"full scale clips", fixedOne, math.MaxInt16},
		{"above full scale clips", fixedOne * 2, math.MaxInt16},
		{"negative full scale", -fixedOne, math.MinInt16},
		{"below negative full scale clips", -fixedOne * 3, math.MinInt16},
		{"half step rounds up", Fixed(1) << 12, 1},
		{"just under half step rounds down", Fixed(1)<<12 - 1, 0},
		{"negative half step rounds up", -(Fixed(1) << 12), 0},
		{"one lsb", Fixed(1) << 13, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.in.Int16(); got != tt.want {
				t.Errorf("Fixed(%d).Int16() = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFixedFromInt16_RoundTrip(t *testing.T) {
	t.Parallel()

	for s := math.MinInt16; s <= math.MaxInt16; s++ {
		if got := FixedFromInt16(int16(s)).Int16(); got != int16(s) {
			t.Fatalf("FixedFromInt16(%d).Int16() = %d", s, got)
		}
	}
}

func TestFixedFromFloat(t *testing.T) {
	t.Parallel()

	if got := FixedFromFloat(0.5).Int16(); got != 16384 {
		t.Errorf("FixedFromFloat(0.5).Int16() = %d, want 16384", got)
	}
	if got := FixedFromFloat(2); got != fixedMax {
		t.Errorf("FixedFromFloat(2) = %d, want %d", got, fixedMax)
	}
	if got := FixedFromFloat(-2); got != fixedMin {
		t.Errorf("FixedFromFloat(-2) = %d, want %d", got, fixedMin)
	}
}

func TestPutPCM16_Interleaving(t *testing.T) {
	t.Parallel()

	mono := PCM{Samples: [][]Fixed{{FixedFromInt16(1), FixedFromInt16(-2)}}}
	stereo := PCM{Samples: [][]Fixed{
		{FixedFromInt16(1), FixedFromInt16(2)},
		{FixedFromInt16(-1), FixedFromInt16(-2)},
	}}

	tests := []struct {
		name     string
		pcm      PCM
		channels int
		want     []byte
	}{
		{"mono as mono", mono, 1, []byte{1, 0, 0xfe, 0xff}},
		{"mono duplicated into stereo", mono, 2, []byte{1, 0, 1, 0, 0xfe, 0xff, 0xfe, 0xff}},
		{"stereo as stereo", stereo, 2, []byte{1, 0, 0xff, 0xff, 2, 0, 0xfe, 0xff}},
		{"stereo keeps first channel", stereo, 1, []byte{1, 0, 2, 0}},
		{"empty", PCM{}, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := putPCM16(nil, tt.pcm, tt.channels)
			if string(got) != string(tt.want) {
				t.Errorf("putPCM16() = %v, want %v", got, tt.want)
			}
		})
	}
}
