// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run starts the ticker loop and emits CycleResult on the provided channel.
// Ticks are skipped while nobody is subscribed. The first cycle after start
// always sweeps the full catalogue. One goroutine per device. No overlap.
func (p *Poller) Run(ctx context.Context, out chan<- CycleResult) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	seeded := false

	cycle := func() {
		if !p.subs.Active() {
			return
		}

		// this cycle serves any pending activation
		select {
		case <-p.subs.Wake():
		default:
		}

		sw := SweepFor(p.subs.Observed(), !seeded)
		seeded = true

		res := p.PollOnce(ctx, sw)
		select {
		case out <- res:
		case <-ctx.Done():
		}
	}

	cycle()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.subs.Wake():
			cycle()
		case <-ticker.C:
			cycle()
		}
	}
}
