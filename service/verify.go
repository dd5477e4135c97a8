package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/backstop/database"
	"github.com/dnldd/backstop/fetch"
	"github.com/dnldd/backstop/market"
	"github.com/dnldd/backstop/shared"
	"github.com/dnldd/backstop/verify"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/atomic"
)

const (
	// defaultBatchInterval is the default spacing between evaluation passes.
	defaultBatchInterval = time.Minute * 5
)

// VerifyConfig represents the configuration struct for the verify service.
type VerifyConfig struct {
	// DatabaseEndpoint represents the database connection endpoint.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// FMPAPIKey is the FMP service API Key.
	FMPAPIKey string
	// ClosedWindowStart is the weekly closed window start boundary ("DDD HH:MM" UTC).
	ClosedWindowStart string
	// ClosedWindowEnd is the weekly closed window end boundary ("DDD HH:MM" UTC).
	ClosedWindowEnd string
	// PageSize is the trade page size per batch iteration.
	PageSize int
	// Lookback is the watermark overlap applied to each fetch window.
	Lookback time.Duration
	// BatchInterval is the spacing between evaluation passes.
	BatchInterval time.Duration
	// NotifyResolved relays the owning user of a resolved trade for downstream
	// recomputation.
	NotifyResolved func(user string)
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *VerifyConfig) Validate() error {
	var errs error

	if cfg.DatabaseEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("database endpoint cannot be an empty string"))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}
	if cfg.BatchInterval == 0 {
		cfg.BatchInterval = defaultBatchInterval
	}

	return errs
}

// Verify represents the trade outcome verification service.
type Verify struct {
	cfg          *VerifyConfig
	verifier     *verify.Verifier
	jobScheduler *gocron.Scheduler
	running      atomic.Bool
	logger       *zerolog.Logger
}

// NewVerify initializes a new verify service.
func NewVerify(ctx context.Context, cfg *VerifyConfig) (*Verify, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating verify service config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "verify").Logger()

	dbLogger := logger.With().Str("component", "database").Logger()
	db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
		Endpoint: cfg.DatabaseEndpoint,
		User:     cfg.DatabaseUser,
		Pass:     cfg.DatabasePass,
		Logger:   &dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	fmp := fetch.NewFMPClient(&fetch.FMPConfig{APIKey: cfg.FMPAPIKey, BaseURL: fetch.BaseURL})

	calendar := market.NewCalendar(cfg.ClosedWindowStart, cfg.ClosedWindowEnd)

	verifierLogger := logger.With().Str("component", "verifier").Logger()
	verifier, err := verify.NewVerifier(&verify.VerifierConfig{
		Store:          db,
		Provider:       fmp,
		Calendar:       calendar,
		NotifyResolved: cfg.NotifyResolved,
		PageSize:       cfg.PageSize,
		Lookback:       cfg.Lookback,
		Logger:         &verifierLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating verifier: %w", err)
	}

	service := &Verify{
		cfg:          cfg,
		verifier:     verifier,
		jobScheduler: gocron.NewScheduler(time.UTC),
		logger:       &logger,
	}

	return service, nil
}

// runBatch runs one evaluation pass. The service is a single flight batch job,
// a pass still in flight when the next trigger fires is skipped rather than
// overlapped.
func (v *Verify) runBatch(ctx context.Context) {
	if !v.running.CAS(false, true) {
		v.logger.Warn().Msg("previous evaluation pass still running, skipping trigger")
		return
	}
	defer v.running.Store(false)

	summary, err := v.verifier.RunBatch(ctx)
	if err != nil {
		// A pagination failure is fatal, signal a service shutdown.
		v.logger.Error().Msgf("running evaluation pass: %v", err)
		v.cfg.Cancel()
		return
	}

	v.logger.Info().Msgf("evaluation pass done: evaluated=%d statusChanges=%d errors=%d",
		summary.Evaluated, summary.StatusChanges, summary.Errors)
}

// Run handles the lifecycle processes of the verify service.
func (v *Verify) Run(ctx context.Context) error {
	_, err := v.jobScheduler.Every(v.cfg.BatchInterval).Do(func() {
		v.runBatch(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling evaluation passes: %w", err)
	}

	v.jobScheduler.StartAsync()

	<-ctx.Done()
	v.jobScheduler.Stop()

	return nil
}

// RunBatch runs a single evaluation pass immediately and returns its summary.
func (v *Verify) RunBatch(ctx context.Context) (shared.BatchSummary, error) {
	return v.verifier.RunBatch(ctx)
}
