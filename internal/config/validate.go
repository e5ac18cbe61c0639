// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded configuration and returns every problem found,
// joined.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, validatePort("server.port", c.Server.Port))
	errs = append(errs, validatePort("agent.port", c.Agent.Port))

	if !c.Database.MockMode && c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required unless database.mock_mode is set"))
	}

	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs <= 0 {
			errs = append(errs, fmt.Errorf("api.rate_limit_reqs must be positive, got %d", c.API.RateLimitReqs))
		}
		if c.API.RateLimitWindow <= 0 {
			errs = append(errs, fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow))
		}
	}

	if u, err := url.Parse(c.Client.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("client.base_url must be an absolute http(s) URL, got %q", c.Client.BaseURL))
	}
	if c.Client.Timeout < 0 {
		errs = append(errs, fmt.Errorf("client.timeout must not be negative, got %s", c.Client.Timeout))
	}

	if c.Breaker.Enabled {
		if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
			errs = append(errs, fmt.Errorf("breaker.failure_ratio must be in (0, 1], got %v", c.Breaker.FailureRatio))
		}
		if c.Breaker.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("breaker.timeout must be positive, got %s", c.Breaker.Timeout))
		}
	}

	if !c.LocalStore.InMemory && c.LocalStore.Path == "" {
		errs = append(errs, errors.New("localstore.path is required unless localstore.in_memory is set"))
	}

	if c.Connectivity.ProbeInterval <= 0 {
		errs = append(errs, fmt.Errorf("connectivity.probe_interval must be positive, got %s", c.Connectivity.ProbeInterval))
	}
	if c.Connectivity.ProbeTimeout <= 0 || c.Connectivity.ProbeTimeout > c.Connectivity.ProbeInterval {
		errs = append(errs, fmt.Errorf("connectivity.probe_timeout must be positive and not exceed probe_interval, got %s", c.Connectivity.ProbeTimeout))
	}

	if c.Flush.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("flush.rate_per_second must not be negative, got %v", c.Flush.RatePerSecond))
	}
	if c.Flush.Interval < 0 {
		errs = append(errs, fmt.Errorf("flush.interval must not be negative, got %s", c.Flush.Interval))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}

// ServerAddr returns host:port of the favorites server listener.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AgentAddr returns host:port of the agent listener.
func (c *Config) AgentAddr() string {
	return fmt.Sprintf("%s:%d", c.Agent.Host, c.Agent.Port)
}
