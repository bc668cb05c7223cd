// Copyright 2023 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the configuration of the IMF data client.
//
// The configuration starts with the defaults, is optionally read from a TOML
// file, and can be overridden by environment variables prefixed with IMF_,
// e.g. IMF_BASE_URL or IMF_RATE_LIMIT_WINDOW.
package config

import (
	"os"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/imf/dataset"
)

// EnvPrefix of the environment variables overriding the configuration.
const EnvPrefix = "imf"

// DefaultUserAgent is a browser-like user agent. The service is known to
// reject requests from some non-browser agents.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// Config of the client.
type Config struct {
	BaseURL           string `toml:"base_url" envconfig:"BASE_URL"`
	MaxURLLength      int    `toml:"max_url_length" envconfig:"MAX_URL_LENGTH"`
	RateLimitRequests int    `toml:"rate_limit_requests" envconfig:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   string `toml:"rate_limit_window" envconfig:"RATE_LIMIT_WINDOW"` // e.g. "5s"
	BatchSize         int    `toml:"batch_size" envconfig:"BATCH_SIZE"`
	QuotaStatus       int    `toml:"quota_status" envconfig:"QUOTA_STATUS"` // HTTP status of a quota violation
	Timeout           string `toml:"timeout" envconfig:"TIMEOUT"`           // HTTP request timeout, e.g. "60s"
	UserAgent         string `toml:"user_agent" envconfig:"USER_AGENT"`
	StartPeriod       string `toml:"start_period" envconfig:"START_PERIOD"`
	EndPeriod         string `toml:"end_period" envconfig:"END_PERIOD"`

	window  time.Duration
	timeout time.Duration
}

// Default configuration.
func Default() *Config {
	c := &Config{
		BaseURL:           dataset.DefaultBaseURL,
		MaxURLLength:      dataset.DefaultMaxURLLength,
		RateLimitRequests: 10,
		RateLimitWindow:   "5s",
		BatchSize:         10,
		QuotaStatus:       429,
		Timeout:           "60s",
		UserAgent:         DefaultUserAgent,
		StartPeriod:       dataset.DefaultStartPeriod,
		EndPeriod:         dataset.DefaultEndPeriod,
	}
	if err := c.Validate(); err != nil {
		panic(errors.Annotate(err, "invalid default config"))
	}
	return c
}

// Load the configuration: defaults, then the TOML file at path (skipped when
// path is empty or the file does not exist), then the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, errors.Annotate(err, "failed to read environment")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}
	return c, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Annotate(err, "failed to open config file %s", path)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(c); err != nil {
		return errors.Annotate(err, "failed to decode config file %s", path)
	}
	return nil
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// Validate checks the values and parses the durations.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.Reason("base_url is required")
	}
	if c.MaxURLLength <= 0 {
		return errors.Reason("max_url_length = %d must be positive", c.MaxURLLength)
	}
	if c.RateLimitRequests <= 0 {
		return errors.Reason("rate_limit_requests = %d must be positive",
			c.RateLimitRequests)
	}
	if c.BatchSize <= 0 {
		return errors.Reason("batch_size = %d must be positive", c.BatchSize)
	}
	if c.BatchSize > c.RateLimitRequests {
		return errors.Reason("batch_size = %d must not exceed rate_limit_requests = %d",
			c.BatchSize, c.RateLimitRequests)
	}
	if c.QuotaStatus < 100 || c.QuotaStatus > 599 {
		return errors.Reason("quota_status = %d is not an HTTP status", c.QuotaStatus)
	}
	// A successful response is never a quota violation.
	if c.QuotaStatus >= 200 && c.QuotaStatus <= 299 {
		return errors.Reason("quota_status = %d is a success status", c.QuotaStatus)
	}
	var err error
	if c.window, err = time.ParseDuration(c.RateLimitWindow); err != nil {
		return errors.Annotate(err, "invalid rate_limit_window")
	}
	if c.window < 0 {
		return errors.Reason("rate_limit_window = %s must not be negative", c.window)
	}
	if c.timeout, err = time.ParseDuration(c.Timeout); err != nil {
		return errors.Annotate(err, "invalid timeout")
	}
	if !yearRe.MatchString(c.StartPeriod) {
		return errors.Reason("start_period = '%s' must be a 4-digit year", c.StartPeriod)
	}
	if !yearRe.MatchString(c.EndPeriod) {
		return errors.Reason("end_period = '%s' must be a 4-digit year", c.EndPeriod)
	}
	return nil
}

// Window of the request pacer. Valid after Validate.
func (c *Config) Window() time.Duration { return c.window }

// RequestTimeout of a single HTTP request; 0 means no timeout. Valid after
// Validate.
func (c *Config) RequestTimeout() time.Duration { return c.timeout }

// DatasetOptions returns the options of a Dataset using fetcher.
func (c *Config) DatasetOptions(fetcher dataset.Fetcher) dataset.Options {
	return dataset.Options{
		Fetcher:      fetcher,
		BaseURL:      c.BaseURL,
		MaxURLLength: c.MaxURLLength,
		StartPeriod:  c.StartPeriod,
		EndPeriod:    c.EndPeriod,
	}
}
