// cmd/wbbpoller/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/wbb-modbus/internal/api"
	"github.com/tamzrod/wbb-modbus/internal/config"
	"github.com/tamzrod/wbb-modbus/internal/curve"
	"github.com/tamzrod/wbb-modbus/internal/item"
	"github.com/tamzrod/wbb-modbus/internal/metrics"
	"github.com/tamzrod/wbb-modbus/internal/poller"
	"github.com/tamzrod/wbb-modbus/internal/status"
)

func main() {
	cfgPath := flag.String("config", "wbb.yaml", "path to the yaml config")
	envPath := flag.String("env", ".env", "optional .env overlay (WBB_HOST, WBB_PORT, WBB_UNIT_ID)")
	probe := flag.Bool("probe", false, "probe every item once at startup and log the unavailable ones")
	flag.Parse()

	logger := log.Default()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	env, err := config.ReadEnv(*envPath)
	if err != nil {
		log.Fatalf("env load failed: %v", err)
	}
	if err := config.ApplyEnv(cfg, env); err != nil {
		log.Fatalf("env overlay failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	device := cfg.Device.Label()

	// --------------------
	// Catalogue + curve
	// --------------------

	items, err := item.Build(item.Catalogue())
	if err != nil {
		log.Fatalf("catalogue build failed: %v", err)
	}

	pwrMap, err := loadCurve(cfg.Curve.File)
	if err != nil {
		// derived items stay empty; everything else keeps working
		log.Printf("warning: power curve unavailable (device=%s): %v", device, err)
	}

	// --------------------
	// Poller
	// --------------------

	p, closePoller, err := poller.Build(cfg, items, logger)
	if err != nil {
		log.Fatalf("poller build failed (device=%s): %v", device, err)
	}
	defer closePoller()

	observed := make([]int, 0, len(cfg.Poll.Observe))
	for _, name := range cfg.Poll.Observe {
		idx, ok := p.Index(name)
		if !ok {
			log.Fatalf("poll.observe: unknown item %q", name)
		}
		observed = append(observed, idx)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *probe {
		probeItems(ctx, p, device)
	}

	tracker := status.NewTracker()

	var exporter *metrics.Exporter
	if cfg.Metrics.Listen != "" {
		exporter = metrics.New(device, pwrMap)
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, exporter.Handler())
		go serve(ctx, "metrics", cfg.Metrics.Listen, mux)

		// the exporter is a permanent listener
		defer p.Subscriptions().Subscribe(observed...)()
	}

	if cfg.HTTP.Listen != "" {
		srv := api.New(p, pwrMap, tracker, logger)
		go serve(ctx, "api", cfg.HTTP.Listen, srv.Handler())

		if exporter == nil {
			defer p.Subscriptions().Subscribe(observed...)()
		}
	}

	if !p.Subscriptions().Active() {
		log.Printf("warning: neither metrics.listen nor http.listen set, poller stays idle (device=%s)", device)
	}

	// --------------------
	// Orchestrator (runner-owned state + 1Hz seconds ticker)
	// --------------------

	out := make(chan poller.CycleResult)
	done := make(chan struct{})

	go func() {
		defer close(done)

		secTicker := time.NewTicker(time.Second)
		defer secTicker.Stop()

		publish := func(s status.Snapshot) {
			if exporter != nil {
				exporter.SetStatus(s)
			}
		}
		publish(tracker.Snapshot())

		for {
			select {
			case <-ctx.Done():
				return

			case res := <-out:
				if exporter != nil {
					exporter.ObserveCycle(res, p.Items())
				}

				snap, changed := tracker.Observe(res.Err, res.At)
				if changed {
					if res.Err == nil {
						log.Printf("device healthy (device=%s, sweep=%s, fetched=%d)", device, res.Sweep.Mode, res.Fetched)
					}
					publish(snap)
				}

			case <-secTicker.C:
				if !p.Subscriptions().Active() {
					if tracker.Idle() {
						publish(tracker.Snapshot())
					}
					continue
				}
				if tracker.Tick() {
					publish(tracker.Snapshot())
				}
			}
		}
	}()

	// poller producer
	go p.Run(ctx, out)

	<-ctx.Done()
	<-done
	log.Printf("shutting down (device=%s)", device)
}

func loadCurve(path string) (*curve.Map, error) {
	if path == "" {
		return curve.Default()
	}
	return curve.Load(path)
}

// probeItems logs the items the device does not serve.
// It stops at the first transport failure.
func probeItems(ctx context.Context, p *poller.Poller, device string) {
	missing := 0
	for _, it := range p.Items() {
		ok, err := p.Available(ctx, it.Name)
		if err != nil {
			log.Printf("warning: probe aborted (device=%s, item=%s): %v", device, it.Name, err)
			return
		}
		if !ok {
			missing++
			log.Printf("item not available (device=%s, item=%s)", device, it.Name)
		}
	}
	log.Printf("probe done (device=%s): %d of %d items available", device, len(p.Items())-missing, len(p.Items()))
}

func serve(ctx context.Context, name, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("%s listening on %s", name, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("%s server failed: %v", name, err)
	}
}
