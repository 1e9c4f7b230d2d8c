package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// reloader re-reads a link source and delivers any external change.
type reloader interface {
	Reload() error
}

// StartPoller re-reads src at a fixed cadence, backing off while reads fail.
// It stands in for the file watcher when the filesystem cannot deliver
// events. It returns immediately.
func StartPoller(ctx context.Context, src reloader, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := src.Reload(); err != nil {
				failures++
				logger.Warn("link poll failed", "error", err, "failures", failures)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles base for each consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
