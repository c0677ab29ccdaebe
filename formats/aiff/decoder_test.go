// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/bits"
	"testing"

	"github.com/ik5/mp3stream/internal/audiotest"
)

// extended encodes an integer sample rate as an 80-bit IEEE 754 float.
func extended(rate int) []byte {
	e := bits.Len(uint(rate)) - 1
	out := make([]byte, 10)
	binary.BigEndian.PutUint16(out, uint16(16383+e))
	binary.BigEndian.PutUint64(out[2:], uint64(rate)<<(63-e))
	return out
}

// buildAIFF assembles a FORM/AIFF file with COMM and SSND chunks. The
// samples are written big-endian at the given bit depth.
func buildAIFF(channels, bitDepth, sampleRate int, samples []int32) []byte {
	width := bitDepth / 8
	frames := 0
	if channels > 0 {
		frames = len(samples) / channels
	}

	var comm bytes.Buffer
	_ = binary.Write(&comm, binary.BigEndian, int16(channels))
	_ = binary.Write(&comm, binary.BigEndian, uint32(frames))
	_ = binary.Write(&comm, binary.BigEndian, int16(bitDepth))
	comm.Write(extended(sampleRate))

	var ssnd bytes.Buffer
	_ = binary.Write(&ssnd, binary.BigEndian, uint32(0)) // offset
	_ = binary.Write(&ssnd, binary.BigEndian, uint32(0)) // block size
	for _, s := range samples {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(s))
		ssnd.Write(b[4-width:])
	}

	var body bytes.Buffer
	body.WriteString("AIFF")
	for _, c := range []struct {
		id   string
		data []byte
	}{{"COMM", comm.Bytes()}, {"SSND", ssnd.Bytes()}} {
		body.WriteString(c.id)
		_ = binary.Write(&body, binary.BigEndian, uint32(len(c.data)))
		body.Write(c.data)
	}

	var out bytes.Buffer
	out.WriteString("FORM")
	_ = binary.Write(&out, binary.BigEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestExtended(t *testing.T) {
	t.Parallel()

	want := []byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0}
	if got := extended(44100); !bytes.Equal(got, want) {
		t.Errorf("extended(44100) = % x, want % x", got, want)
	}
}

func TestDecoder_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		channels   int
		sampleRate int
	}{
		{"mono 8k", 1, 8000},
		{"stereo 44.1k", 2, 44100},
		{"stereo 48k", 2, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]int32, 64*tt.channels)
			src, err := Decoder{}.Decode(bytes.NewReader(buildAIFF(tt.channels, 16, tt.sampleRate, samples)))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			defer src.Close()

			if src.SampleRate() != tt.sampleRate || src.Channels() != tt.channels {
				t.Errorf("format = %d Hz %d ch, want %d Hz %d ch",
					src.SampleRate(), src.Channels(), tt.sampleRate, tt.channels)
			}
		})
	}
}

func TestDecoder_Samples16(t *testing.T) {
	t.Parallel()

	file := buildAIFF(1, 16, 8000, []int32{16384, -32768, 0, 8192})
	src, err := Decoder{}.Decode(audiotest.NewChunkReader(file, 5))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	want := []float32{0.5, -1, 0, 0.25}
	if n != len(want) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(want))
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotAiffFile},
		{"text", []byte("This is not AIFF data"), ErrNotAiffFile},
		{"WAV header", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), ErrNotAiffFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if src != nil {
				t.Error("Decode() returned a source on error")
			}
		})
	}
}

func TestDecoder_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	r := io.MultiReader(bytes.NewReader([]byte("FORM")), &failingReader{err: boom})
	if _, err := (Decoder{}).Decode(r); !errors.Is(err, boom) {
		t.Errorf("Decode() error = %v, want %v", err, boom)
	}
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestErrors(t *testing.T) {
	t.Parallel()

	all := []error{ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout}
	for i, a := range all {
		if a.Error() == "" {
			t.Errorf("error %d has an empty message", i)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}

func BenchmarkDecoder_ReadSamples(b *testing.B) {
	samples := make([]int32, 44100*2)
	for i := range samples {
		samples[i] = int32(i%2000 - 1000)
	}
	file := buildAIFF(2, 16, 44100, samples)
	buf := make([]float32, 4096)
	b.ReportAllocs()

	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(file))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
