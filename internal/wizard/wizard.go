// Package wizard collects missing batch parameters interactively.
package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/forgebit/mailforge/internal/cliconfig"
)

// Run prompts for any batch parameter still missing from cfg. Parameters
// already supplied via flags, env, or config file are not asked again.
// The domains slice populates the domain selector.
func Run(ctx context.Context, cfg *cliconfig.Config, domains []string) error {
	if cfg.Count < 1 {
		if err := askCount(ctx, cfg); err != nil {
			return err
		}
	}
	if cfg.Domain == "" {
		if err := askDomain(ctx, cfg, domains); err != nil {
			return err
		}
	}
	if cfg.BaseName == "" {
		if err := askBaseName(ctx, cfg); err != nil {
			return err
		}
	}
	if len(cfg.Password) < cliconfig.MinPasswordLength {
		if err := askPassword(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

func askCount(ctx context.Context, cfg *cliconfig.Config) error {
	var input string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Account Count").
				Description("How many accounts to provision").
				Placeholder("10").
				Value(&input).
				Validate(ValidateCount),
		).Title("Batch Size"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	count, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("parse count: %w", err)
	}
	cfg.Count = count
	return nil
}

func askDomain(ctx context.Context, cfg *cliconfig.Config, domains []string) error {
	if len(domains) == 0 {
		return fmt.Errorf("no selectable domains offered by the service")
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Domain").
				Description("Domain for the generated addresses").
				Options(huh.NewOptions(domains...)...).
				Value(&cfg.Domain),
		).Title("Domain"),
	).RunWithContext(ctx)
}

func askBaseName(ctx context.Context, cfg *cliconfig.Config) error {
	var input string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base Name").
				Description("Local-part prefix; a zero-padded index is appended").
				Placeholder("worker").
				Value(&input).
				Validate(ValidateBaseName),
		).Title("Base Name"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	cfg.BaseName = cliconfig.SanitizeBaseName(input)
	return nil
}

func askPassword(ctx context.Context, cfg *cliconfig.Config) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description(fmt.Sprintf("Shared credential for all accounts (min %d characters)", cliconfig.MinPasswordLength)).
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Password).
				Validate(ValidatePassword),
		).Title("Credential"),
	).RunWithContext(ctx)
}

// ValidateCount accepts a positive integer.
func ValidateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	return nil
}

// ValidateBaseName accepts any input that survives sanitation.
func ValidateBaseName(s string) error {
	if cliconfig.SanitizeBaseName(s) == "" {
		return fmt.Errorf("use letters, digits, dot, dash or underscore")
	}
	return nil
}

// ValidatePassword enforces the operator-side minimum length.
func ValidatePassword(s string) error {
	if len(s) < cliconfig.MinPasswordLength {
		return fmt.Errorf("at least %d characters", cliconfig.MinPasswordLength)
	}
	return nil
}
