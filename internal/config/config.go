// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ik5/mp3stream/mpeg"
)

// Config holds the CLI configuration
type Config struct {
	// Encoding
	BitRate    int // kbps
	Quality    int
	SampleRate int // 0 keeps the source rate, rounded to a layer III rate
	Mono       bool

	// Decoding
	ChunkSize int // bytes per ReadN
	StageSize int

	// Limits
	MaxReadSize   int
	MaxBufferSize int

	// Metrics
	MetricsAddr   string // empty disables the endpoint
	MetricsLinger time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		BitRate:       getIntEnv("MP3STREAM_BITRATE", mpeg.DefaultBitRate),
		Quality:       getIntEnv("MP3STREAM_QUALITY", mpeg.DefaultQuality),
		SampleRate:    getIntEnv("MP3STREAM_SAMPLE_RATE", 0),
		Mono:          getBoolEnv("MP3STREAM_MONO", false),
		ChunkSize:     getIntEnv("MP3STREAM_CHUNK_SIZE", 32*1024),
		StageSize:     getIntEnv("MP3STREAM_STAGE_SIZE", mpeg.DefaultStageSize),
		MaxReadSize:   getIntEnv("MP3STREAM_MAX_READ_SIZE", mpeg.DefaultMaxReadSize),
		MaxBufferSize: getIntEnv("MP3STREAM_MAX_BUFFER_SIZE", mpeg.DefaultMaxBufferSize),
		MetricsAddr:   getEnv("MP3STREAM_METRICS_ADDR", ""),
		MetricsLinger: getDurationEnv("MP3STREAM_METRICS_LINGER", 0),
	}
}

// Options returns the engine options the limits translate to.
func (c *Config) Options() []mpeg.Option {
	return []mpeg.Option{
		mpeg.WithStageSize(c.StageSize),
		mpeg.WithMaxReadSize(c.MaxReadSize),
		mpeg.WithMaxBufferSize(c.MaxBufferSize),
	}
}

// Helper functions to get environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
