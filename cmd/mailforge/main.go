package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/forgebit/mailforge"
	logadapter "github.com/forgebit/mailforge/internal/adapters/log"
	"github.com/forgebit/mailforge/internal/cliconfig"
	"github.com/forgebit/mailforge/internal/domain"
	"github.com/forgebit/mailforge/internal/ui"
	"github.com/forgebit/mailforge/internal/watch"
	"github.com/forgebit/mailforge/internal/wizard"
)

const helpBanner = `
                    _  _  __
  _ __ ___    __ _ (_)| |/ _|  ___   _ __   __ _   ___
 | '_ ' _ \  / _' || || | |_  / _ \ | '__| / _' | / _ \
 | | | | | || (_| || || |  _|| (_) || |   | (_| ||  __/
 |_| |_| |_| \__,_||_||_|_|   \___/ |_|    \__, | \___|
                                           |___/
`

const helpDescription = `
Bulk-provision mail accounts against a rate-limited account API.

Highlights:
  - Deterministic address sequences: re-running a batch picks up where it
    left off, duplicates count as successes.
  - Exponential backoff on rate limits and transient failures, fixed pacing
    between requests.
  - Complete ordered report of every identity, even when some fail.
  - Configure via file, env (MAILFORGE_*), or flags; prompts for the rest.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  mailforge --count 25 --base-name worker --password <secret>
  mailforge --config $HOME/.mailforge/config.toml --yes
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// progressPrinter writes one line per resolved account to stdout.
type progressPrinter struct{}

func (progressPrinter) OnResolved(index, total int, entry domain.LedgerEntry) {
	fmt.Printf("[%d/%d] %s %s (attempts=%d)\n",
		index+1, total, entry.Account.Address, entry.Outcome.Kind, entry.Attempts)
}

func main() {
	// Optional .env for MAILFORGE_* variables; missing file is fine.
	_ = godotenv.Load()

	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "mailforge",
		Short:   "Bulk-provision mail accounts against a rate-limited account API",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.mailforge/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (MAILFORGE_*)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			log := cliconfig.Logger(cfg.Verbose)
			zl := logadapter.NewZerologAdapterWithLogger(log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine := mailforge.New(cfg,
				mailforge.WithLogger(zl),
				mailforge.WithObserver(progressPrinter{}),
			)

			// The domain listing gates everything: without it no sequence can
			// be generated, so failure here aborts the run.
			domains, err := engine.Domains(ctx)
			if err != nil {
				return fmt.Errorf("list domains: %w", err)
			}
			if cfg.Domain != "" && !contains(domains, cfg.Domain) {
				log.Warn().Str("domain", cfg.Domain).Msg("configured domain not offered by the service")
			}

			if !cfg.Yes {
				if err := wizard.Run(ctx, &cfg, domains); err != nil {
					return fmt.Errorf("collect parameters: %w", err)
				}
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking the credential)
			logCfg := cfg
			if len(logCfg.Password) > 0 {
				logCfg.Password = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			// Wizard and validation may have filled in parameters; rebuild
			// with the final config.
			engine = mailforge.New(cfg,
				mailforge.WithLogger(zl),
				mailforge.WithObserver(progressPrinter{}),
			)

			// Live pacing retune from config file edits during the run.
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				w := watch.New(cfgFile, engine, zl)
				if err := w.Start(ctx); err != nil {
					log.Warn().Err(err).Msg("config watch unavailable")
				} else {
					defer w.Stop()
				}
			}

			report, path, err := engine.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Println(ui.Summary(report, path))
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.mailforge/config.toml)")
	root.Flags().StringVar(&cfg.BaseName, "base-name", cfg.BaseName, "local-part prefix for generated addresses")
	root.Flags().StringVar(&cfg.Domain, "domain", cfg.Domain, "domain for generated addresses")
	root.Flags().StringVar(&cfg.Password, "password", cfg.Password, "shared credential for all accounts")
	root.Flags().IntVar(&cfg.Count, "count", cfg.Count, "number of accounts to provision")

	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, fmt.Sprintf("base service URL (defaults to %s; override only for testing)", cliconfig.DefaultServiceURL))
	if err := root.Flags().MarkHidden("service-url"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to hide service-url flag:", err)
	}

	root.Flags().IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retry budget per identity")
	root.Flags().DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "base delay before each attempt; doubles on retry")
	root.Flags().DurationVar(&cfg.Pacing, "pacing", cfg.Pacing, "fixed delay between distinct identities")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per call")

	root.Flags().StringVar(&cfg.ReportDir, "report-dir", cfg.ReportDir, "directory for the persisted report")
	root.Flags().BoolVarP(&cfg.Yes, "yes", "y", cfg.Yes, "non-interactive: never prompt, fail on missing parameters")
	root.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug logging")

	if err := root.Execute(); err != nil {
		log := cliconfig.Logger(false)
		log.Error().Err(err).Msg("mailforge")
		os.Exit(1)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
