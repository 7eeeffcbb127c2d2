package cliconfig

import "os"

// ApplyEnvConfig applies MAILFORGE_* environment variables to the Config.
// Env values override file config but are overridden by explicitly set flags
// (checked via the changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", os.Getenv("MAILFORGE_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("base-name", os.Getenv("MAILFORGE_BASE_NAME"), &cfg.BaseName)
	s.setString("domain", os.Getenv("MAILFORGE_DOMAIN"), &cfg.Domain)
	s.setString("password", os.Getenv("MAILFORGE_PASSWORD"), &cfg.Password)
	s.setString("report-dir", os.Getenv("MAILFORGE_REPORT_DIR"), &cfg.ReportDir)

	if err := s.setIntFromString("count", os.Getenv("MAILFORGE_COUNT"), &cfg.Count); err != nil {
		return err
	}
	if err := s.setIntFromString("max-retries", os.Getenv("MAILFORGE_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}

	if err := s.setDuration("retry-delay", os.Getenv("MAILFORGE_RETRY_DELAY"), &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("pacing", os.Getenv("MAILFORGE_PACING"), &cfg.Pacing); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("MAILFORGE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("yes", os.Getenv("MAILFORGE_YES"), &cfg.Yes)
	s.setBoolFromString("verbose", os.Getenv("MAILFORGE_VERBOSE"), &cfg.Verbose)

	return nil
}
