// Package sweeper runs periodic housekeeping over bookings.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Marker closes out retreats that have ended.
type Marker interface {
	MarkNoShows(ctx context.Context, asOf time.Time) (int, error)
}

// Run sweeps once per interval until ctx is done. A non-positive interval
// disables the loop.
func Run(ctx context.Context, m Marker, every time.Duration, log *slog.Logger) {
	if every <= 0 {
		log.Info("no-show sweeper disabled")
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("no-show sweeper stopping")
			return
		case tick := <-ticker.C:
			sweep(ctx, m, tick, log)
		}
	}
}

func sweep(ctx context.Context, m Marker, now time.Time, log *slog.Logger) {
	n, err := m.MarkNoShows(ctx, now)
	switch {
	case err != nil:
		log.Error("no-show sweep failed", "err", err, "marked", n)
	case n > 0:
		log.Info("marked no-shows", "count", n)
	}
}
