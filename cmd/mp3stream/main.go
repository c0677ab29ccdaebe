// SPDX-License-Identifier: EPL-2.0

// Command mp3stream decodes, encodes and inspects MPEG audio streams.
//
//	mp3stream decode -in song.mp3 -out song.wav
//	mp3stream decode -in - -out - -raw < song.mp3 | aplay -f cd
//	mp3stream encode -in voice.ogg -out voice.mp3 -mono -rate 22050
//	mp3stream info -in song.mp3
//
// Defaults come from MP3STREAM_* environment variables.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/mp3stream"
	"github.com/ik5/mp3stream/formats/mp3"
	"github.com/ik5/mp3stream/formats/wav"
	"github.com/ik5/mp3stream/internal/config"
	"github.com/ik5/mp3stream/internal/metrics"
	"github.com/ik5/mp3stream/mpeg"
)

const usage = `usage: mp3stream <command> [flags]

commands:
  decode   MP3 to WAV, or raw 16-bit PCM with -raw
  encode   WAV, AIFF, Ogg Vorbis or MP3 to MP3
  info     print the stream format of an MP3 file

run "mp3stream <command> -h" for the flags of a command
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app is one command invocation.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	verbose bool
	metrics *metrics.Metrics
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	a := &app{
		cfg:    config.Load(),
		logger: log.New(stderr, "mp3stream: ", log.LstdFlags),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	var cmd func([]string) error
	switch args[0] {
	case "decode":
		cmd = a.decode
	case "encode":
		cmd = a.encode
	case "info":
		cmd = a.info
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err := cmd(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			return 2
		}
		a.logger.Printf("%s: %v", args[0], err)
		return 1
	}
	return 0
}

// flags registers the flags every command shares.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.BoolVar(&a.verbose, "v", false, "log decoder and encoder diagnostics")
	fs.StringVar(&a.cfg.MetricsAddr, "metrics", a.cfg.MetricsAddr, "serve Prometheus metrics on `addr` while running")
	fs.IntVar(&a.cfg.StageSize, "stage", a.cfg.StageSize, "decoder input stage size in `bytes`")
	return fs
}

func (a *app) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}

// options builds the engine options and starts the metrics endpoint when
// one is configured. The returned stop function must be called when the
// command is done.
func (a *app) options() ([]mpeg.Option, func(), error) {
	opts := a.cfg.Options()
	if a.verbose {
		opts = append(opts, mpeg.WithLogger(a.logger))
	}
	if a.cfg.MetricsAddr == "" {
		return opts, func() {}, nil
	}

	a.metrics = metrics.New()
	opts = append(opts, mpeg.WithObserver(a.metrics))

	stop, err := a.serveMetrics()
	if err != nil {
		return nil, nil, err
	}
	return opts, stop, nil
}

func (a *app) serveMetrics() (func(), error) {
	ln, err := net.Listen("tcp", a.cfg.MetricsAddr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Printf("metrics server: %v", err)
		}
	}()
	a.logger.Printf("serving metrics on http://%s/metrics", ln.Addr())

	return func() {
		if a.cfg.MetricsLinger > 0 {
			a.logger.Printf("keeping metrics up for %s", a.cfg.MetricsLinger)
			time.Sleep(a.cfg.MetricsLinger)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Printf("metrics server shutdown: %v", err)
		}
	}, nil
}

func (a *app) open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(a.stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return f, nil
}

func (a *app) decode(args []string) error {
	fs := a.flags("decode")
	in := fs.String("in", "-", "MP3 `file` to read, - for stdin")
	out := fs.String("out", "", "`file` to write, - for stdout")
	raw := fs.Bool("raw", false, "write headerless 16-bit little-endian PCM")
	fs.IntVar(&a.cfg.ChunkSize, "chunk", a.cfg.ChunkSize, "PCM `bytes` per read")
	fs.IntVar(&a.cfg.MaxReadSize, "max-read", a.cfg.MaxReadSize, "largest PCM read in `bytes`")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *out == "" {
		fmt.Fprintln(a.stderr, "decode: -out is required")
		fs.Usage()
		return errUsage
	}

	opts, stop, err := a.options()
	if err != nil {
		return err
	}
	defer stop()

	r, err := a.open(*in)
	if err != nil {
		return err
	}
	defer r.Close()

	var format mpeg.Format
	switch {
	case *raw:
		format, err = a.decodeRaw(r, *out, opts)
	case *out == "-":
		format, err = a.decodeWAVStdout(r, opts)
	default:
		format, err = a.decodeWAVFile(r, *out, opts)
	}
	if err != nil {
		return err
	}

	a.logger.Printf("decoded %s", format)
	return nil
}

func (a *app) decodeRaw(r io.Reader, out string, opts []mpeg.Option) (mpeg.Format, error) {
	w := a.stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return mpeg.Format{}, fmt.Errorf("%w", err)
		}
		defer f.Close()
		w = f
	}

	dec, err := mp3stream.NewDecoder(r, opts...)
	if err != nil {
		return mpeg.Format{}, err
	}
	defer dec.Close()

	chunk := max(a.cfg.ChunkSize, 4)
	for {
		pcm, err := dec.ReadN(chunk)
		if len(pcm) > 0 {
			if _, werr := w.Write(pcm); werr != nil {
				return mpeg.Format{}, fmt.Errorf("%w", werr)
			}
		}
		if err != nil {
			return mpeg.Format{}, err
		}
		if len(pcm) < chunk {
			break
		}
	}

	format, err := dec.Format()
	if err != nil {
		return format, fmt.Errorf("%w: %w", mp3.ErrNoFrames, err)
	}
	return format, nil
}

// decodeWAVStdout buffers the whole stream, since stdout cannot seek back
// to patch the WAV header.
func (a *app) decodeWAVStdout(r io.Reader, opts []mpeg.Option) (mpeg.Format, error) {
	dec, err := mp3stream.NewDecoder(r, opts...)
	if err != nil {
		return mpeg.Format{}, err
	}
	defer dec.Close()

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return mpeg.Format{}, fmt.Errorf("%w", err)
	}
	format, err := dec.Format()
	if err != nil {
		return format, fmt.Errorf("%w: %w", mp3.ErrNoFrames, err)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	if err := wav.WriteWAV16(a.stdout, format.SampleRate, format.Channels, samples); err != nil {
		return format, err
	}
	return format, nil
}

func (a *app) decodeWAVFile(r io.Reader, out string, opts []mpeg.Option) (mpeg.Format, error) {
	f, err := os.Create(out)
	if err != nil {
		return mpeg.Format{}, fmt.Errorf("%w", err)
	}
	defer f.Close()

	format, err := mp3stream.DecodeToWAV(f, r, opts...)
	if err != nil {
		return format, err
	}
	if err := f.Close(); err != nil {
		return format, fmt.Errorf("%w", err)
	}
	return format, nil
}

func (a *app) encode(args []string) error {
	fs := a.flags("encode")
	in := fs.String("in", "", "input `file`, - for stdin")
	out := fs.String("out", "-", "MP3 `file` to write, - for stdout")
	format := fs.String("format", "", "input `format`, defaults to the file extension")
	fs.IntVar(&a.cfg.BitRate, "bitrate", a.cfg.BitRate, "target bit rate in `kbps`")
	fs.IntVar(&a.cfg.Quality, "quality", a.cfg.Quality, "encoder quality, 2 (best) to 7")
	fs.IntVar(&a.cfg.SampleRate, "rate", a.cfg.SampleRate, "output sample rate in `Hz`, 0 keeps the input rate")
	fs.BoolVar(&a.cfg.Mono, "mono", a.cfg.Mono, "mix down to one channel")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *in == "" {
		fmt.Fprintln(a.stderr, "encode: -in is required")
		fs.Usage()
		return errUsage
	}
	if *format == "" {
		*format = strings.TrimPrefix(filepath.Ext(*in), ".")
	}
	if *format == "" {
		fmt.Fprintln(a.stderr, "encode: cannot tell the input format, use -format")
		return errUsage
	}

	opts, stop, err := a.options()
	if err != nil {
		return err
	}
	defer stop()

	r, err := a.open(*in)
	if err != nil {
		return err
	}
	defer r.Close()

	src, err := mp3stream.NewRegistry(opts...).Decode(*format, r)
	if err != nil {
		return err
	}
	defer src.Close()

	w := a.stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		defer f.Close()
		w = f
	}

	res, err := mp3stream.Encode(w, src, mp3stream.EncodeOptions{
		BitRate:    a.cfg.BitRate,
		Quality:    a.cfg.Quality,
		SampleRate: a.cfg.SampleRate,
		Mono:       a.cfg.Mono,
		Options:    opts,
	})
	if err != nil {
		return err
	}

	a.logger.Printf("encoded %d PCM bytes: %d ch, %d Hz, %s",
		res.PCMBytes, res.Config.Channels, res.Config.SampleRate, res.Config.Mode)
	return nil
}

func (a *app) info(args []string) error {
	fs := a.flags("info")
	in := fs.String("in", "-", "MP3 `file` to read, - for stdin")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	opts, stop, err := a.options()
	if err != nil {
		return err
	}
	defer stop()

	r, err := a.open(*in)
	if err != nil {
		return err
	}
	defer r.Close()

	format, err := mp3stream.Probe(r, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, format)
	return nil
}
