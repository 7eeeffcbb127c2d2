package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServiceURL  string `toml:"service_url"`
	BaseName    string `toml:"base_name"`
	Domain      string `toml:"domain"`
	Password    string `toml:"password"`
	Count       int    `toml:"count"`
	MaxRetries  int    `toml:"max_retries"`
	RetryDelay  string `toml:"retry_delay"`
	Pacing      string `toml:"pacing"`
	HTTPTimeout string `toml:"http_timeout"`
	ReportDir   string `toml:"report_dir"`
	Yes         *bool  `toml:"yes"`
	Verbose     *bool  `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.mailforge/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mailforge", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("base-name", fc.BaseName, &cfg.BaseName)
	s.setString("domain", fc.Domain, &cfg.Domain)
	s.setString("password", fc.Password, &cfg.Password)
	s.setString("report-dir", fc.ReportDir, &cfg.ReportDir)

	s.setInt("count", fc.Count, &cfg.Count)
	s.setInt("max-retries", fc.MaxRetries, &cfg.MaxRetries)

	if err := s.setDuration("retry-delay", fc.RetryDelay, &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("pacing", fc.Pacing, &cfg.Pacing); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBool("yes", fc.Yes, &cfg.Yes)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
