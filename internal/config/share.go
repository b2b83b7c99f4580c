package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// EnvShareOrigin overrides the origin used to compose share and embed URLs.
const EnvShareOrigin = "SHARE_ORIGIN"

// ShareConfig contains share link composition configuration.
type ShareConfig struct {
	// Origin is the scheme://host[:port] prefix for share and embed URLs.
	Origin string `toml:"origin"`
}

// Finalize applies defaults, loads environment overrides, and validates the share configuration.
func (c *ShareConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ShareConfig) Merge(overlay *ShareConfig) {
	if overlay.Origin != "" {
		c.Origin = overlay.Origin
	}
}

func (c *ShareConfig) loadDefaults() {
	if c.Origin == "" {
		c.Origin = "http://localhost:8080"
	}
}

func (c *ShareConfig) loadEnv() {
	if v := os.Getenv(EnvShareOrigin); v != "" {
		c.Origin = v
	}
}

func (c *ShareConfig) validate() error {
	u, err := url.Parse(c.Origin)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("origin must include scheme and host")
	}
	c.Origin = strings.TrimRight(c.Origin, "/")
	return nil
}
