package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts idle in-memory state and reports how much it removed
type Sweeper interface {
	Sweep() int
}

// RunSweeper calls every sweeper once per interval until ctx is done
func RunSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger, sweepers ...Sweeper) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := 0
			for _, s := range sweepers {
				evicted += s.Sweep()
			}
			if evicted > 0 {
				logger.Debug("evicted idle sessions", "count", evicted)
			}
		}
	}
}
