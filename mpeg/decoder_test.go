// SPDX-License-Identifier: EPL-2.0

package mpeg_test

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/ik5/mp3stream/internal/audiotest"
	"github.com/ik5/mp3stream/mpeg"
)

var (
	monoSpec = audiotest.FrameSpec{
		Channels:   1,
		Mode:       mpeg.ModeSingleChannel,
		Layer:      mpeg.LayerIII,
		BitRate:    64,
		SampleRate: 22050,
	}
	stereoSpec = audiotest.FrameSpec{
		Channels:   2,
		Mode:       mpeg.ModeJointStereo,
		Layer:      mpeg.LayerIII,
		BitRate:    128,
		SampleRate: 44100,
	}
)

// buildStream returns frames of the test codec and the PCM they decode to.
func buildStream(spec audiotest.FrameSpec, frames, perFrame int) (stream, pcm []byte) {
	samples := audiotest.Ramp(frames*perFrame, spec.Channels)
	step := perFrame * spec.Channels
	for f := range frames {
		stream = append(stream, audiotest.EncodeFrame(spec, samples[f*step:(f+1)*step])...)
	}
	return stream, audiotest.PCM16(samples)
}

func garbage(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 17)
	}
	return b
}

type recorder struct {
	frames     int
	resyncs    int
	failures   int
	pcm        int
	compressed int
}

func (r *recorder) FrameDecoded(mpeg.Header) { r.frames++ }
func (r *recorder) Resynced(error)           { r.resyncs++ }
func (r *recorder) DecodeFailed(error)       { r.failures++ }

func (r *recorder) Encoded(pcm, compressed int) {
	r.pcm += pcm
	r.compressed += compressed
}

func newDecoder(t *testing.T, r io.Reader, opts ...mpeg.Option) *mpeg.Decoder {
	t.Helper()

	dec, err := mpeg.NewDecoder(r, audiotest.NewFrameCodec(0), opts...)
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return dec
}

// drain reads n bytes at a time until the decoder is exhausted.
func drain(t *testing.T, dec *mpeg.Decoder, n int) []byte {
	t.Helper()

	var out []byte
	for {
		chunk, err := dec.ReadN(n)
		if err != nil {
			t.Fatalf("ReadN(%d) error = %v", n, err)
		}
		if len(chunk) == 0 {
			return out
		}
		if len(chunk) > n {
			t.Fatalf("ReadN(%d) returned %d bytes", n, len(chunk))
		}
		out = append(out, chunk...)
	}
}

func TestDecoder_ChunkBoundaries(t *testing.T) {
	t.Parallel()

	stream, want := buildStream(stereoSpec, 12, 150)

	sources := []struct {
		name  string
		chunk int
	}{
		{"whole file", len(stream)},
		{"one byte", 1},
		{"173 bytes", 173},
		{"stage sized", mpeg.MinStageSize},
	}
	reads := []int{1, 7, 600, 4096, 1 << 20}

	for _, src := range sources {
		for _, n := range reads {
			r := audiotest.NewChunkReader(stream, src.chunk)
			dec := newDecoder(t, r, mpeg.WithStageSize(mpeg.MinStageSize))

			got := drain(t, dec, n)
			if !bytes.Equal(got, want) {
				t.Errorf("%s, reads of %d: got %d bytes, want %d identical bytes",
					src.name, n, len(got), len(want))
			}
			if dec.Frames() != 12 {
				t.Errorf("%s, reads of %d: Frames() = %d, want 12", src.name, n, dec.Frames())
			}
		}
	}
}

func TestDecoder_ReadNReturnsExactlyN(t *testing.T) {
	t.Parallel()

	stream, want := buildStream(monoSpec, 5, 100)
	dec := newDecoder(t, bytes.NewReader(stream))

	got, err := dec.ReadN(333)
	if err != nil {
		t.Fatalf("ReadN() error = %v", err)
	}
	if !bytes.Equal(got, want[:333]) {
		t.Errorf("ReadN(333) = %d bytes, want the first 333 bytes", len(got))
	}

	rest, err := dec.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(rest, want[333:]) {
		t.Errorf("ReadAll() = %d bytes, want %d", len(rest), len(want)-333)
	}

	// exhausted
	got, err = dec.ReadN(10)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadN() at end = %d bytes, %v, want 0, nil", len(got), err)
	}
}

func TestDecoder_Resync(t *testing.T) {
	t.Parallel()

	a, pcmA := buildStream(stereoSpec, 3, 64)
	b, pcmB := buildStream(stereoSpec, 2, 32)

	var stream []byte
	stream = append(stream, garbage(37)...)
	stream = append(stream, a...)
	stream = append(stream, garbage(500)...)
	stream = append(stream, b...)
	stream = append(stream, garbage(3)...)

	want := append(append([]byte{}, pcmA...), pcmB...)

	for _, chunk := range []int{1, 173, len(stream)} {
		obs := &recorder{}
		dec := newDecoder(t, audiotest.NewChunkReader(stream, chunk), mpeg.WithObserver(obs))

		got := drain(t, dec, 4096)
		if !bytes.Equal(got, want) {
			t.Errorf("chunk %d: got %d bytes, want %d", chunk, len(got), len(want))
		}
		if obs.resyncs == 0 {
			t.Errorf("chunk %d: no resync reported", chunk)
		}
		if obs.frames != 5 {
			t.Errorf("chunk %d: %d frames reported, want 5", chunk, obs.frames)
		}
	}
}

func TestDecoder_CorruptHeaderIsSkipped(t *testing.T) {
	t.Parallel()

	stream, want := buildStream(monoSpec, 4, 50)
	frameSize := audiotest.HeaderSize + 100

	// break the checksum of the second frame
	corrupt := append([]byte{}, stream...)
	corrupt[frameSize+13] ^= 0xFF

	dec := newDecoder(t, bytes.NewReader(corrupt))
	got := drain(t, dec, 1000)

	wantSkipped := append(append([]byte{}, want[:100]...), want[200:]...)
	if !bytes.Equal(got, wantSkipped) {
		t.Errorf("got %d bytes, want %d", len(got), len(wantSkipped))
	}
}

func TestDecoder_FatalErrorDrainsFirst(t *testing.T) {
	t.Parallel()

	good, want := buildStream(stereoSpec, 3, 40)
	tail, _ := buildStream(stereoSpec, 2, 40)

	stream := append(append(append([]byte{}, good...), audiotest.PoisonFrame()...), tail...)

	obs := &recorder{}
	dec := newDecoder(t, bytes.NewReader(stream), mpeg.WithObserver(obs))

	got, err := dec.ReadN(1 << 16)
	if err != nil {
		t.Fatalf("first ReadN() error = %v, want the decoded audio first", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("first ReadN() = %d bytes, want %d", len(got), len(want))
	}

	for range 2 {
		got, err = dec.ReadN(1 << 16)
		if !errors.Is(err, mpeg.ErrFormat) {
			t.Fatalf("ReadN() after fatal error = %v, want ErrFormat", err)
		}
		if len(got) != 0 {
			t.Errorf("ReadN() after fatal error returned %d bytes", len(got))
		}
	}

	var fe *mpeg.FormatError
	if !errors.As(err, &fe) || !errors.Is(fe, audiotest.ErrPoisoned) {
		t.Errorf("error = %v, want *FormatError carrying the codec error", err)
	}
	if obs.failures != 1 {
		t.Errorf("DecodeFailed reported %d times, want 1", obs.failures)
	}
}

func TestDecoder_FatalErrorDrainsAcrossSmallReads(t *testing.T) {
	t.Parallel()

	good, want := buildStream(monoSpec, 2, 30)
	stream := append(append([]byte{}, good...), audiotest.PoisonFrame()...)

	dec := newDecoder(t, bytes.NewReader(stream))

	var got []byte
	for {
		chunk, err := dec.ReadN(7)
		if err != nil {
			if !errors.Is(err, mpeg.ErrFormat) {
				t.Fatalf("ReadN() error = %v, want ErrFormat", err)
			}
			break
		}
		if len(chunk) == 0 {
			t.Fatal("ReadN() returned no audio and no error before the fatal error")
		}
		got = append(got, chunk...)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %d bytes before the error, want %d", len(got), len(want))
	}
}

func TestDecoder_Priming(t *testing.T) {
	t.Parallel()

	stream, want := buildStream(monoSpec, 3, 80)
	src := audiotest.NewChunkReader(append(garbage(20), stream...), 64)
	dec := newDecoder(t, src)

	if dec.IsValid() {
		t.Fatal("IsValid() = true before any read")
	}
	if _, err := dec.SampleRate(); !errors.Is(err, mpeg.ErrState) {
		t.Errorf("SampleRate() before priming error = %v, want ErrState", err)
	}

	got, err := dec.ReadN(0)
	if err != nil || len(got) != 0 {
		t.Fatalf("ReadN(0) = %d bytes, %v, want 0, nil", len(got), err)
	}
	if !dec.IsValid() {
		t.Fatal("IsValid() = false after priming")
	}
	if dec.Frames() != 1 {
		t.Errorf("Frames() after priming = %d, want 1", dec.Frames())
	}

	format, err := dec.Format()
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	wantFormat := mpeg.Format{Channels: 1, SampleRate: 22050, BitRate: 64, Mode: mpeg.ModeSingleChannel, Layer: mpeg.LayerIII}
	if format != wantFormat {
		t.Errorf("Format() = %+v, want %+v", format, wantFormat)
	}

	// priming again is a no-op
	if _, err := dec.ReadN(0); err != nil {
		t.Fatalf("second ReadN(0) error = %v", err)
	}
	if dec.Frames() != 1 {
		t.Errorf("Frames() after second priming = %d, want 1", dec.Frames())
	}

	// the primed frame is not lost
	if got := drain(t, dec, 512); !bytes.Equal(got, want) {
		t.Errorf("audio after priming = %d bytes, want %d", len(got), len(want))
	}
}

func TestDecoder_Accessors(t *testing.T) {
	t.Parallel()

	stream, _ := buildStream(stereoSpec, 1, 10)
	dec := newDecoder(t, bytes.NewReader(stream))

	checks := []struct {
		name string
		get  func() (any, error)
		want any
	}{
		{"Channels", func() (any, error) { return dec.Channels() }, 2},
		{"SampleRate", func() (any, error) { return dec.SampleRate() }, 44100},
		{"BitRate", func() (any, error) { return dec.BitRate() }, 128},
		{"Mode", func() (any, error) { return dec.Mode() }, mpeg.ModeJointStereo},
		{"Layer", func() (any, error) { return dec.Layer() }, mpeg.LayerIII},
	}

	for _, c := range checks {
		if _, err := c.get(); !errors.Is(err, mpeg.ErrState) {
			t.Errorf("%s() before first frame error = %v, want ErrState", c.name, err)
		}
	}

	if _, err := dec.ReadN(0); err != nil {
		t.Fatalf("ReadN(0) error = %v", err)
	}

	for _, c := range checks {
		got, err := c.get()
		if err != nil {
			t.Errorf("%s() error = %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDecoder_InvalidStream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("This is not MP3 data")},
		{"garbage", garbage(10000)},
		{"truncated frame", audiotest.EncodeFrame(monoSpec, make([]int16, 40))[:30]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dec := newDecoder(t, bytes.NewReader(tt.data))

			got, err := dec.ReadN(0)
			if err != nil || len(got) != 0 {
				t.Errorf("ReadN(0) = %d bytes, %v, want 0, nil", len(got), err)
			}
			if dec.IsValid() {
				t.Error("IsValid() = true, want false")
			}

			got, err = dec.ReadAll()
			if err != nil || len(got) != 0 {
				t.Errorf("ReadAll() = %d bytes, %v, want 0, nil", len(got), err)
			}
		})
	}
}

func TestDecoder_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	stream, _ := buildStream(monoSpec, 3, 50)
	src := io.MultiReader(bytes.NewReader(stream), iotest.ErrReader(boom))

	dec := newDecoder(t, src)

	got, err := dec.ReadN(1 << 20)
	if !errors.Is(err, mpeg.ErrSourceIO) || !errors.Is(err, boom) {
		t.Fatalf("ReadN() error = %v, want ErrSourceIO wrapping the source error", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadN() returned %d bytes with a source error, want 0", len(got))
	}
}

func TestDecoder_ChannelCountIsLocked(t *testing.T) {
	t.Parallel()

	mono := audiotest.EncodeFrame(monoSpec, []int16{1, 2})
	stereo := audiotest.EncodeFrame(stereoSpec, []int16{10, 20, 30, 40})

	tests := []struct {
		name   string
		stream []byte
		want   []int16
	}{
		{"stereo then mono", append(append([]byte{}, stereo...), mono...), []int16{10, 20, 30, 40, 1, 1, 2, 2}},
		{"mono then stereo", append(append([]byte{}, mono...), stereo...), []int16{1, 2, 10, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dec := newDecoder(t, bytes.NewReader(tt.stream))
			got := audiotest.Samples16(drain(t, dec, 100))

			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDecoder_OversizedRunIsDropped(t *testing.T) {
	t.Parallel()

	// a header announcing a frame larger than the input stage
	bogus := audiotest.EncodeFrame(stereoSpec, make([]int16, 2*2000))[:audiotest.HeaderSize]
	stream, want := buildStream(monoSpec, 2, 20)

	var src []byte
	src = append(src, bogus...)
	src = append(src, make([]byte, 9000)...)
	src = append(src, stream...)

	obs := &recorder{}
	dec := newDecoder(t, bytes.NewReader(src),
		mpeg.WithStageSize(mpeg.MinStageSize), mpeg.WithObserver(obs))

	got := drain(t, dec, 4096)
	if !bytes.Equal(got, want) {
		t.Errorf("got %d bytes, want %d", len(got), len(want))
	}
	if obs.resyncs == 0 {
		t.Error("dropping the oversized run was not reported")
	}
}

func TestDecoder_IOReader(t *testing.T) {
	t.Parallel()

	stream, want := buildStream(stereoSpec, 6, 99)
	dec := newDecoder(t, iotest.HalfReader(bytes.NewReader(stream)))

	got, err := io.ReadAll(iotest.OneByteReader(dec))
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("io.ReadAll() = %d bytes, want %d", len(got), len(want))
	}

	n, err := dec.Read(make([]byte, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("Read() at end = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestDecoder_InvalidArguments(t *testing.T) {
	t.Parallel()

	if _, err := mpeg.NewDecoder(nil, audiotest.NewFrameCodec(0)); !errors.Is(err, mpeg.ErrArgument) {
		t.Errorf("NewDecoder(nil reader) error = %v, want ErrArgument", err)
	}
	if _, err := mpeg.NewDecoder(bytes.NewReader(nil), nil); !errors.Is(err, mpeg.ErrArgument) {
		t.Errorf("NewDecoder(nil codec) error = %v, want ErrArgument", err)
	}

	dec := newDecoder(t, bytes.NewReader(nil))
	if _, err := dec.ReadN(-1); !errors.Is(err, mpeg.ErrArgument) {
		t.Errorf("ReadN(-1) error = %v, want ErrArgument", err)
	}
}

func TestDecoder_Close(t *testing.T) {
	t.Parallel()

	stream, _ := buildStream(monoSpec, 2, 10)
	codec := audiotest.NewFrameCodec(0)
	dec, err := mpeg.NewDecoder(bytes.NewReader(stream), codec)
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	if err := dec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !codec.Closed {
		t.Error("codec was not closed")
	}
	if err := dec.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := dec.ReadN(10); !errors.Is(err, mpeg.ErrState) {
		t.Errorf("ReadN() after Close error = %v, want ErrState", err)
	}
	if _, err := dec.Read(make([]byte, 10)); !errors.Is(err, mpeg.ErrState) {
		t.Errorf("Read() after Close error = %v, want ErrState", err)
	}
}

func TestDecoder_SuspenderWrapsEveryCodecCall(t *testing.T) {
	t.Parallel()

	stream, _ := buildStream(monoSpec, 4, 10)

	calls := map[mpeg.CodecOp]int{}
	suspend := func(op mpeg.CodecOp, call func()) {
		calls[op]++
		call()
	}

	dec := newDecoder(t, bytes.NewReader(stream), mpeg.WithSuspender(suspend))
	drain(t, dec, 100)

	if calls[mpeg.OpDecode] < 4 {
		t.Errorf("suspender saw %d decode calls, want at least 4", calls[mpeg.OpDecode])
	}
}

func TestDecoder_Logger(t *testing.T) {
	t.Parallel()

	stream, _ := buildStream(monoSpec, 1, 10)
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	dec := newDecoder(t, bytes.NewReader(append(garbage(5), stream...)), mpeg.WithLogger(logger))
	drain(t, dec, 100)

	out := buf.String()
	if !strings.Contains(out, "skipped 5 bytes") {
		t.Errorf("log = %q, want the resync to be logged", out)
	}
	if !strings.Contains(out, "stream format") {
		t.Errorf("log = %q, want the stream format to be logged", out)
	}
}

func TestDecoder_BufferLimit(t *testing.T) {
	t.Parallel()

	stream, _ := buildStream(stereoSpec, 2, 100)
	dec := newDecoder(t, bytes.NewReader(stream), mpeg.WithMaxBufferSize(64))

	if _, err := dec.ReadN(0); !errors.Is(err, mpeg.ErrResource) {
		t.Errorf("ReadN(0) error = %v, want ErrResource", err)
	}
}

// stubCodec replays a fixed list of outcomes.
type stubCodec struct {
	outcomes []mpeg.Outcome
	calls    int
}

func (s *stubCodec) DecodeFrame([]byte) mpeg.Outcome {
	s.calls++
	if len(s.outcomes) == 0 {
		return mpeg.NeedMoreInput{}
	}
	o := s.outcomes[0]
	s.outcomes = s.outcomes[1:]
	return o
}

func TestDecoder_MisbehavingCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome mpeg.Outcome
		wantErr error
	}{
		{"recoverable error without progress", mpeg.RecoverableError{Err: errors.New("stuck")}, nil},
		{"decoded frame without progress", mpeg.Decoded{}, mpeg.ErrFormat},
		{"nil outcome", nil, mpeg.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			codec := &stubCodec{outcomes: []mpeg.Outcome{tt.outcome, tt.outcome, tt.outcome}}
			dec, err := mpeg.NewDecoder(bytes.NewReader(garbage(100)), codec)
			if err != nil {
				t.Fatalf("NewDecoder() error = %v", err)
			}

			_, err = dec.ReadN(10)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ReadN() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadN() error = %v, want %v", err, tt.wantErr)
			}
			if codec.calls > 3 {
				t.Errorf("codec called %d times, want the loop to stop", codec.calls)
			}
		})
	}
}
