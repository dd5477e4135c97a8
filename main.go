package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/backstop/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifyCfg := service.VerifyConfig{
		DatabaseEndpoint:  cfg.DatabaseEndpoint,
		DatabaseUser:      cfg.DatabaseUser,
		DatabasePass:      cfg.DatabasePass,
		FMPAPIKey:         cfg.FMPAPIKey,
		ClosedWindowStart: cfg.ClosedWindowStart,
		ClosedWindowEnd:   cfg.ClosedWindowEnd,
		PageSize:          cfg.PageSize,
		Lookback:          time.Duration(cfg.LookbackMinutes) * time.Minute,
		BatchInterval:     time.Duration(cfg.BatchIntervalMinutes) * time.Minute,
		Cancel:            cancel,
	}
	verify, err := service.NewVerify(ctx, &verifyCfg)
	if err != nil {
		log.Printf("creating verify service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	err = verify.Run(ctx)
	if err != nil {
		log.Printf("running verify service: %v", err)
	}
}
