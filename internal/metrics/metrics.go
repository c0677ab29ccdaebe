// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/mp3stream/formats/mp3"
	"github.com/ik5/mp3stream/mpeg"
)

// Metrics holds all Prometheus metrics and implements mpeg.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// Decode metrics
	FramesDecoded *prometheus.CounterVec
	Resyncs       *prometheus.CounterVec
	DecodeErrors  prometheus.Counter

	// Encode metrics
	PCMBytesIn       prometheus.Counter
	EncodedBytesOut  prometheus.Counter
	EncodedChunkSize prometheus.Histogram
}

// New creates the metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FramesDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mp3stream_frames_decoded_total",
				Help: "Total number of frames decoded",
			},
			[]string{"layer", "sample_rate"},
		),
		Resyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mp3stream_resyncs_total",
				Help: "Total number of recoverable decode errors skipped over",
			},
			[]string{"reason"},
		),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "mp3stream_decode_errors_total",
			Help: "Total number of fatal decode errors",
		}),

		PCMBytesIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "mp3stream_pcm_bytes_in_total",
			Help: "Total PCM bytes accepted by encoders",
		}),
		EncodedBytesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "mp3stream_encoded_bytes_out_total",
			Help: "Total compressed bytes written by encoders",
		}),
		EncodedChunkSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mp3stream_encoded_chunk_size_bytes",
			Help:    "Compressed bytes produced per encoder call",
			Buckets: prometheus.ExponentialBuckets(256, 2, 10), // 256B to 128KB
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FrameDecoded(h mpeg.Header) {
	m.FramesDecoded.WithLabelValues(h.Layer.String(), strconv.Itoa(h.SampleRate)).Inc()
}

func (m *Metrics) Resynced(err error) {
	m.Resyncs.WithLabelValues(reason(err)).Inc()
}

func (m *Metrics) DecodeFailed(error) {
	m.DecodeErrors.Inc()
}

func (m *Metrics) Encoded(pcmBytes, compressedBytes int) {
	m.PCMBytesIn.Add(float64(pcmBytes))
	m.EncodedBytesOut.Add(float64(compressedBytes))
	if compressedBytes > 0 {
		m.EncodedChunkSize.Observe(float64(compressedBytes))
	}
}

var reasons = []struct {
	err   error
	label string
}{
	{mp3.ErrLostSync, "lost_sync"},
	{mp3.ErrUnsupportedLayer, "unsupported_layer"},
	{mp3.ErrUnsupportedVersion, "unsupported_version"},
	{mp3.ErrSynthesis, "synthesis"},
	{mp3.ErrSynthesisPanic, "synthesis_panic"},
}

// reason keeps the label set small. A nil error is a plain skip over
// garbage before a sync word.
func reason(err error) string {
	if err == nil {
		return "skip"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "other"
}
