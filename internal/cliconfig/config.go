package cliconfig

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultServiceURL is the default endpoint for the account API.
const DefaultServiceURL = "https://api.mail.tm"

// Default engine tuning values.
const (
	DefaultMaxRetries  = 7
	DefaultRetryDelay  = 2 * time.Second
	DefaultPacing      = 3 * time.Second
	DefaultHTTPTimeout = 30 * time.Second
)

// MinPasswordLength is enforced on operator input. The upstream is the final
// authority; shorter secrets it rejects classify as permanent failures.
const MinPasswordLength = 8

var baseNameAllowed = regexp.MustCompile(`[^a-z0-9._-]`)

// Config holds CLI configuration for mailforge.
type Config struct {
	ServiceURL string

	// Batch parameters.
	BaseName string
	Domain   string
	Password string
	Count    int

	// Engine tuning.
	MaxRetries  int
	RetryDelay  time.Duration
	Pacing      time.Duration
	HTTPTimeout time.Duration

	ReportDir string
	Yes       bool // non-interactive: never prompt, fail on missing params
	Verbose   bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServiceURL:  DefaultServiceURL,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
		Pacing:      DefaultPacing,
		HTTPTimeout: DefaultHTTPTimeout,
		ReportDir:   ".",
		Password:    os.Getenv("MAILFORGE_PASSWORD"),
	}
}

// SanitizeBaseName lowercases the name and strips every character outside
// the allowed set [a-z0-9._-].
func SanitizeBaseName(name string) string {
	return baseNameAllowed.ReplaceAllString(strings.ToLower(name), "")
}

// Validate checks the configuration for errors and sets derived defaults.
// Batch parameters are expected to be complete by the time Validate runs
// (the wizard fills missing ones in interactive mode).
func (c *Config) Validate() error {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	// Ensure no trailing slash
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")

	c.BaseName = SanitizeBaseName(c.BaseName)
	if c.BaseName == "" {
		return fmt.Errorf("base name is required")
	}
	if !strings.Contains(c.Domain, ".") {
		return fmt.Errorf("domain %q is invalid", c.Domain)
	}
	if len(c.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be positive")
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Pacing <= 0 {
		c.Pacing = DefaultPacing
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.ReportDir == "" {
		c.ReportDir = "."
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
