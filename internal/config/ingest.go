package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// EnvIngestAcceptedTypes overrides the accepted content types (comma-separated).
	EnvIngestAcceptedTypes = "INGEST_ACCEPTED_TYPES"

	// EnvIngestMaxPageWidth overrides the maximum rendered page width.
	EnvIngestMaxPageWidth = "INGEST_MAX_PAGE_WIDTH"

	// EnvIngestMaxPageHeight overrides the maximum rendered page height.
	EnvIngestMaxPageHeight = "INGEST_MAX_PAGE_HEIGHT"
)

// IngestConfig contains document conversion configuration.
type IngestConfig struct {
	// AcceptedTypes lists the content types the validator admits.
	AcceptedTypes []string `toml:"accepted_types"`

	// MaxPageWidth and MaxPageHeight bound full-resolution page rendering
	// in logical pixels.
	MaxPageWidth  int `toml:"max_page_width"`
	MaxPageHeight int `toml:"max_page_height"`

	// ThumbnailScale is the fractional scale applied to page dimensions
	// when rendering thumbnails.
	ThumbnailScale float64 `toml:"thumbnail_scale"`

	// StreamBuffer sizes the progress event channel for an ingest run.
	StreamBuffer int `toml:"stream_buffer"`
}

// Finalize applies defaults, loads environment overrides, and validates the ingest configuration.
func (c *IngestConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *IngestConfig) Merge(overlay *IngestConfig) {
	if len(overlay.AcceptedTypes) > 0 {
		c.AcceptedTypes = overlay.AcceptedTypes
	}
	if overlay.MaxPageWidth != 0 {
		c.MaxPageWidth = overlay.MaxPageWidth
	}
	if overlay.MaxPageHeight != 0 {
		c.MaxPageHeight = overlay.MaxPageHeight
	}
	if overlay.ThumbnailScale != 0 {
		c.ThumbnailScale = overlay.ThumbnailScale
	}
	if overlay.StreamBuffer != 0 {
		c.StreamBuffer = overlay.StreamBuffer
	}
}

func (c *IngestConfig) loadDefaults() {
	if len(c.AcceptedTypes) == 0 {
		c.AcceptedTypes = []string{"application/pdf"}
	}
	if c.MaxPageWidth == 0 {
		c.MaxPageWidth = 1600
	}
	if c.MaxPageHeight == 0 {
		c.MaxPageHeight = 2000
	}
	if c.ThumbnailScale == 0 {
		c.ThumbnailScale = 0.2
	}
	if c.StreamBuffer == 0 {
		c.StreamBuffer = 64
	}
}

func (c *IngestConfig) loadEnv() {
	if v := os.Getenv(EnvIngestAcceptedTypes); v != "" {
		parts := strings.Split(v, ",")
		types := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				types = append(types, t)
			}
		}
		if len(types) > 0 {
			c.AcceptedTypes = types
		}
	}
	if v := os.Getenv(EnvIngestMaxPageWidth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPageWidth = n
		}
	}
	if v := os.Getenv(EnvIngestMaxPageHeight); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPageHeight = n
		}
	}
}

func (c *IngestConfig) validate() error {
	if c.MaxPageWidth < 1 || c.MaxPageHeight < 1 {
		return fmt.Errorf("max page dimensions must be positive")
	}
	if c.ThumbnailScale <= 0 || c.ThumbnailScale >= 1 {
		return fmt.Errorf("thumbnail_scale must be between 0 and 1")
	}
	if c.StreamBuffer < 1 {
		return fmt.Errorf("stream_buffer must be positive")
	}
	return nil
}
