// Package mailforge bulk-provisions mail accounts against a rate-limited
// account-creation API.
//
// Example usage:
//
//	cfg := mailforge.DefaultConfig()
//	cfg.BaseName = "worker"
//	cfg.Domain = "example.com"
//	cfg.Password = "correct-horse-battery"
//	cfg.Count = 25
//	engine := mailforge.New(cfg)
//	report, path, err := engine.Run(context.Background())
package mailforge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/forgebit/mailforge/internal/adapters/fs"
	httpapi "github.com/forgebit/mailforge/internal/adapters/http"
	logadapter "github.com/forgebit/mailforge/internal/adapters/log"
	"github.com/forgebit/mailforge/internal/app"
	"github.com/forgebit/mailforge/internal/cliconfig"
	"github.com/forgebit/mailforge/internal/domain"
	"github.com/forgebit/mailforge/internal/ports"
)

// Config holds the configuration for a provisioning run.
type Config = cliconfig.Config

// Re-export port types for convenient embedding.
type (
	// Logger is the structured logging interface.
	Logger = ports.Logger

	// HTTPClient is the HTTP request interface. *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// ProgressObserver receives per-account resolution notifications.
	ProgressObserver = ports.ProgressObserver
)

// DefaultConfig returns a Config with sensible default values.
// At minimum, set BaseName, Domain, Password and Count before Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Option configures optional behavior of an Engine.
type Option func(*options)

type options struct {
	httpClient ports.HTTPClient
	logger     ports.Logger
	observer   ports.ProgressObserver
	writer     ports.ReportWriter
}

// WithHTTPClient sets a custom HTTP client for API communication.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger ports.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver sets a progress observer invoked once per resolved account.
// Called synchronously from the batch loop; it must not block for long.
func WithObserver(observer ports.ProgressObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithReportWriter overrides report persistence.
// If not provided, reports are written under cfg.ReportDir.
func WithReportWriter(w ports.ReportWriter) Option {
	return func(o *options) {
		o.writer = w
	}
}

// Engine wires the provisioning pipeline for one batch run.
type Engine struct {
	cfg    Config
	client *httpapi.Client
	runner *app.Runner
	logger ports.Logger
	writer ports.ReportWriter
}

// New creates an engine from cfg. Engine tuning fields fall back to their
// defaults; batch parameters are checked in Run, after any interactive
// collection has completed.
func New(cfg Config, opts ...Option) *Engine {
	o := options{
		logger: logadapter.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = cliconfig.DefaultHTTPTimeout
		}
		o.httpClient = &http.Client{Timeout: timeout}
	}
	if o.writer == nil {
		o.writer = fs.NewReportFile(cfg.ReportDir)
	}

	client := httpapi.NewClient(cfg.ServiceURL, o.httpClient, o.logger)
	governor := app.NewGovernor(client, o.logger, cfg.MaxRetries, cfg.RetryDelay)
	runner := app.NewRunner(governor, o.observer, o.logger, cfg.Pacing)

	return &Engine{
		cfg:    cfg,
		client: client,
		runner: runner,
		logger: o.logger,
		writer: o.writer,
	}
}

// Domains lists the selectable domains offered by the upstream service.
// Failure here is fatal to a run: without the domain listing no request
// sequence can be generated.
func (e *Engine) Domains(ctx context.Context) ([]string, error) {
	return e.client.Domains(ctx)
}

// SetPacing retunes the inter-request delay while a run is in progress.
func (e *Engine) SetPacing(d time.Duration) {
	e.runner.SetPacing(d)
}

// Run generates the account sequence, drives it to a complete ledger,
// persists the report, and returns it with the report path.
//
// Per-identity failures are contained in ledger entries and never abort the
// batch; only invalid generator parameters or report persistence surface as
// errors. On cancellation the partial report is still persisted and
// returned: every entry in it is fully resolved.
func (e *Engine) Run(ctx context.Context) (domain.Report, string, error) {
	accounts, err := domain.GenerateSequence(e.cfg.BaseName, e.cfg.Domain, e.cfg.Password, e.cfg.Count)
	if err != nil {
		return domain.Report{}, "", err
	}

	runID := uuid.NewString()
	e.logger.Info("starting batch",
		ports.String("run", runID),
		ports.Int("count", len(accounts)),
		ports.String("domain", e.cfg.Domain),
	)

	// One advisory probe, strictly before the paced loop. A hit means a
	// previous run with the same parameters already provisioned part of the
	// sequence; duplicates will resolve as already_exists.
	if e.client.Authenticate(ctx, accounts[0]) {
		e.logger.Warn("first identity already exists upstream",
			ports.String("address", accounts[0].Address),
		)
	}

	entries := e.runner.Run(ctx, accounts)
	report := app.Aggregate(runID, time.Now(), entries)

	path, err := e.writer.Write(report, app.RenderText(report))
	if err != nil {
		return report, "", fmt.Errorf("persist report: %w", err)
	}

	e.logger.Info("batch finished",
		ports.String("run", runID),
		ports.Int("created", report.Created),
		ports.Int("failed", report.Failed),
		ports.String("report", path),
	)
	return report, path, nil
}
