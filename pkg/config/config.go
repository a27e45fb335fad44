// Package config provides configuration loading for the catalog services.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultExternalTimeoutSeconds = 5

// Config carries the process-wide settings for the external collaborators:
// hosts of the remote services the workflow engine and validators call, and
// their shared timeout budget. It is constructed once at startup and passed
// down explicitly.
type Config struct {
	// PublishingHost is the upstream software center host. When empty,
	// submit skips the upstream POST.
	PublishingHost string `yaml:"publishing_host"`

	// IndexURL is the search index push endpoint. When empty, index pushes
	// are skipped.
	IndexURL string `yaml:"index_url"`

	// DOIRegistrarURL is the DOI registration endpoint. When empty, DOI
	// registration is skipped.
	DOIRegistrarURL string `yaml:"doi_registrar_url"`

	// ValidationAPIHost serves the award number validation API. When empty,
	// award numbers always validate as false.
	ValidationAPIHost string `yaml:"validation_api_host"`

	// DOIResolverURL is the DOI resolver prefix used to check DOIs.
	DOIResolverURL string `yaml:"doi_resolver_url"`

	// PhoneRegion is the default region for phone number parsing.
	PhoneRegion string `yaml:"phone_region"`

	// ExternalTimeoutSeconds bounds connect/read time for every external
	// call.
	ExternalTimeoutSeconds int `yaml:"external_timeout_seconds"`
}

// ExternalTimeout returns the timeout budget for external calls.
func (c Config) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSeconds) * time.Second
}

// Default returns a configuration with all defaults applied and no
// external services configured.
func Default() Config {
	return Config{
		DOIResolverURL:         "https://doi.org/",
		PhoneRegion:            "US",
		ExternalTimeoutSeconds: defaultExternalTimeoutSeconds,
	}
}

// Load reads a YAML configuration file and applies defaults for anything
// the file leaves unset.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()

	return config, nil
}

// LoadOrDefault attempts to load configuration from a file, falling back to
// defaults when the file does not exist.
func LoadOrDefault(path string) Config {
	config, err := Load(path)
	if err != nil {
		return Default()
	}

	return config
}

func (c *Config) applyDefaults() {
	if c.DOIResolverURL == "" {
		c.DOIResolverURL = "https://doi.org/"
	}

	if c.PhoneRegion == "" {
		c.PhoneRegion = "US"
	}

	if c.ExternalTimeoutSeconds <= 0 {
		c.ExternalTimeoutSeconds = defaultExternalTimeoutSeconds
	}
}
