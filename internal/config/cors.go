package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	// EnvCORSOrigins overrides the allowed origins (comma-separated).
	EnvCORSOrigins = "CORS_ORIGINS"

	// EnvCORSCredentials overrides the allow-credentials flag.
	EnvCORSCredentials = "CORS_ALLOW_CREDENTIALS"
)

// CORSConfig contains cross-origin resource sharing configuration.
type CORSConfig struct {
	Origins     []string `toml:"origins"`
	Methods     []string `toml:"methods"`
	Headers     []string `toml:"headers"`
	Credentials bool     `toml:"credentials"`
}

// Finalize applies defaults and loads environment overrides.
func (c *CORSConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	if len(overlay.Origins) > 0 {
		c.Origins = overlay.Origins
	}
	if len(overlay.Methods) > 0 {
		c.Methods = overlay.Methods
	}
	if len(overlay.Headers) > 0 {
		c.Headers = overlay.Headers
	}
	if overlay.Credentials {
		c.Credentials = true
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.Methods) == 0 {
		c.Methods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.Headers) == 0 {
		c.Headers = []string{"Content-Type", "Authorization"}
	}
}

func (c *CORSConfig) loadEnv() {
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
		c.Origins = origins
	}
	if v := os.Getenv(EnvCORSCredentials); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Credentials = b
		}
	}
}
