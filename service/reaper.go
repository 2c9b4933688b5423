package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aman1195/risk-scan-pro/pkg/logger"
)

// TimedOutMessage is the error stored on documents the reaper fails
const TimedOutMessage = "analysis timed out"

// Reaper fails documents that stay analyzing longer than a timeout
type Reaper struct {
	lifecycle *Lifecycle
	timeout   time.Duration
	interval  time.Duration
}

func NewReaper(lifecycle *Lifecycle, timeout, interval time.Duration) *Reaper {
	return &Reaper{lifecycle: lifecycle, timeout: timeout, interval: interval}
}

// Run sweeps every interval until ctx is done
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("reaper started", "timeout", r.timeout, "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				slog.Error("reaper sweep failed", "error", err)
			}
		}
	}
}

// Sweep fails every stale document once and returns how many it failed
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.lifecycle.now().Add(-r.timeout)
	docs, err := r.lifecycle.store.ListStaleDocuments(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, d := range docs {
		err := r.lifecycle.FailDocument(ctx, d.ID, TimedOutMessage)
		switch {
		case err == nil:
			failed++
		case errors.Is(err, ErrAlreadyFinal), errors.Is(err, ErrNotFound):
			// finished or deleted since the listing
		default:
			logger.Error(logger.With(ctx, logger.DocumentIDKey, d.ID), "failed to time out document", "error", err)
		}
	}
	return failed, nil
}
