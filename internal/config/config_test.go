// SPDX-License-Identifier: EPL-2.0

package config

import (
	"testing"
	"time"

	"github.com/ik5/mp3stream/mpeg"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"MP3STREAM_BITRATE", "MP3STREAM_QUALITY", "MP3STREAM_SAMPLE_RATE", "MP3STREAM_MONO",
		"MP3STREAM_CHUNK_SIZE", "MP3STREAM_STAGE_SIZE", "MP3STREAM_MAX_READ_SIZE",
		"MP3STREAM_MAX_BUFFER_SIZE", "MP3STREAM_METRICS_ADDR", "MP3STREAM_METRICS_LINGER",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.BitRate != mpeg.DefaultBitRate || cfg.Quality != mpeg.DefaultQuality {
		t.Errorf("BitRate, Quality = %d, %d", cfg.BitRate, cfg.Quality)
	}
	if cfg.ChunkSize != 32*1024 || cfg.StageSize != mpeg.DefaultStageSize {
		t.Errorf("ChunkSize, StageSize = %d, %d", cfg.ChunkSize, cfg.StageSize)
	}
	if cfg.MetricsAddr != "" || cfg.Mono || cfg.SampleRate != 0 {
		t.Errorf("MetricsAddr %q, Mono %v, SampleRate %d", cfg.MetricsAddr, cfg.Mono, cfg.SampleRate)
	}
	if len(cfg.Options()) != 3 {
		t.Errorf("Options() = %d options, want 3", len(cfg.Options()))
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MP3STREAM_BITRATE", "192")
	t.Setenv("MP3STREAM_QUALITY", "2")
	t.Setenv("MP3STREAM_MONO", "true")
	t.Setenv("MP3STREAM_CHUNK_SIZE", "4096")
	t.Setenv("MP3STREAM_METRICS_ADDR", ":9100")
	t.Setenv("MP3STREAM_METRICS_LINGER", "5s")

	cfg := Load()
	if cfg.BitRate != 192 || cfg.Quality != 2 || !cfg.Mono || cfg.ChunkSize != 4096 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MetricsAddr != ":9100" || cfg.MetricsLinger != 5*time.Second {
		t.Errorf("MetricsAddr %q, MetricsLinger %v", cfg.MetricsAddr, cfg.MetricsLinger)
	}
}

func TestLoad_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("MP3STREAM_BITRATE", "fast")
	t.Setenv("MP3STREAM_MONO", "maybe")
	t.Setenv("MP3STREAM_METRICS_LINGER", "soon")

	cfg := Load()
	if cfg.BitRate != mpeg.DefaultBitRate || cfg.Mono || cfg.MetricsLinger != 0 {
		t.Errorf("BitRate %d, Mono %v, MetricsLinger %v", cfg.BitRate, cfg.Mono, cfg.MetricsLinger)
	}
}
