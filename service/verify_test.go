package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dnldd/backstop/market"
	"github.com/dnldd/backstop/shared"
	"github.com/dnldd/backstop/verify"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

// stubStore is a minimal trade store for service tests.
type stubStore struct {
	fetches  int
	fetchErr error
}

func (s *stubStore) FetchEvaluableTrades(ctx context.Context, limit int, offset int) ([]shared.Trade, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}

	return nil, nil
}

func (s *stubStore) AdvanceWatermark(ctx context.Context, id string, watermark time.Time) error {
	return nil
}

func (s *stubStore) MarkTradeOpen(ctx context.Context, id string, filledOn time.Time, watermark time.Time) error {
	return nil
}

func (s *stubStore) ResolveTrade(ctx context.Context, id string, status shared.TradeStatus, closedOn time.Time, watermark time.Time) error {
	return nil
}

func (s *stubStore) MarkTradeUnverified(ctx context.Context, id string, reason shared.IntegrityReason, details string, closedOn time.Time, watermark time.Time) error {
	return nil
}

func (s *stubStore) RecordTransition(ctx context.Context, transition *shared.TradeTransition) error {
	return nil
}

func (s *stubStore) RecordEvent(ctx context.Context, event *shared.TradeEvent) error {
	return nil
}

// stubProvider is a minimal candle provider for service tests.
type stubProvider struct{}

func (p *stubProvider) FetchOneMinuteCandles(ctx context.Context, market string, start time.Time, end time.Time) ([]shared.Candlestick, error) {
	return nil, nil
}

func setupService(t *testing.T, store *stubStore, cancel context.CancelFunc) *Verify {
	t.Helper()

	logger := log.With().Str("service", "verify").Logger()
	verifier, err := verify.NewVerifier(&verify.VerifierConfig{
		Store:    store,
		Provider: &stubProvider{},
		Calendar: market.NewCalendar(market.DefaultClosedWindowStart, market.DefaultClosedWindowEnd),
		Logger:   &logger,
	})
	assert.NoError(t, err)

	return &Verify{
		cfg:      &VerifyConfig{Cancel: cancel},
		verifier: verifier,
		logger:   &logger,
	}
}

func TestVerifyConfigValidate(t *testing.T) {
	base := func() *VerifyConfig {
		return &VerifyConfig{
			DatabaseEndpoint: "http://localhost:4001",
			DatabaseUser:     "user",
			DatabasePass:     "pass",
			FMPAPIKey:        "key",
			Cancel:           func() {},
		}
	}

	tests := []struct {
		name    string
		modify  func(cfg *VerifyConfig)
		wantErr bool
	}{
		{
			name:   "valid config",
			modify: func(cfg *VerifyConfig) {},
		},
		{
			name:    "missing database endpoint",
			modify:  func(cfg *VerifyConfig) { cfg.DatabaseEndpoint = "" },
			wantErr: true,
		},
		{
			name:    "missing fmp api key",
			modify:  func(cfg *VerifyConfig) { cfg.FMPAPIKey = "" },
			wantErr: true,
		},
		{
			name:    "missing cancel func",
			modify:  func(cfg *VerifyConfig) { cfg.Cancel = nil },
			wantErr: true,
		},
	}

	for _, test := range tests {
		cfg := base()
		test.modify(cfg)

		err := cfg.Validate()
		if err == nil && test.wantErr {
			t.Errorf("%s: expected an error, got none", test.name)
		}
		if err != nil && !test.wantErr {
			t.Errorf("%s: no error expected but got %v", test.name, err)
		}
	}

	// Ensure the batch interval default is applied.
	cfg := base()
	err := cfg.Validate()
	if err != nil {
		t.Fatalf("no error expected but got %v", err)
	}
	if cfg.BatchInterval != defaultBatchInterval {
		t.Errorf("expected batch interval %v, got %v", defaultBatchInterval, cfg.BatchInterval)
	}
}

func TestRunBatchSingleFlight(t *testing.T) {
	store := &stubStore{}
	service := setupService(t, store, func() {})

	// A trigger firing while a pass is still in flight is skipped.
	service.running.Store(true)
	service.runBatch(context.Background())
	assert.Equal(t, store.fetches, 0)

	// The next trigger after the pass completes runs normally and releases
	// the guard.
	service.running.Store(false)
	service.runBatch(context.Background())
	assert.Equal(t, store.fetches, 1)
	assert.False(t, service.running.Load())
}

func TestRunBatchFatalErrorCancels(t *testing.T) {
	store := &stubStore{fetchErr: errors.New("database unavailable")}

	cancelled := make(chan struct{}, 1)
	service := setupService(t, store, func() { cancelled <- struct{}{} })

	service.runBatch(context.Background())

	// A pagination failure shuts the service down.
	select {
	case <-cancelled:
	default:
		t.Error("expected a fatal evaluation pass to cancel the service context")
	}
}
