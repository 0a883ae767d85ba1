package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/k3y5tr0k3/sysmonify/internal/collector"
	"github.com/k3y5tr0k3/sysmonify/internal/config"
	"github.com/k3y5tr0k3/sysmonify/internal/logger"
	"github.com/k3y5tr0k3/sysmonify/internal/sampler"
	"github.com/k3y5tr0k3/sysmonify/internal/server"
)

// shutdownTimeout bounds how long serve waits for open viewer
// connections to drain after Ctrl+C.
const shutdownTimeout = 5 * time.Second

// serveCommand runs the samplers and the WebSocket server until
// SIGINT/SIGTERM.
func serveCommand(listenOverride string) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if listenOverride != "" {
		cfg.Listen = listenOverride
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log := logger.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collectors := collector.All(collector.Options{
		ProcessLimit:  cfg.Process.Limit,
		GPURetryTicks: cfg.Sample.GPURetryTicks,
		Logger:        log,
	})

	registry := sampler.NewRegistry(collectors, sampler.Options{
		Interval: cfg.Sample.Interval,
		Timeout:  cfg.Sample.Timeout,
		Queue:    cfg.Hub.Queue,
		Logger:   log,
	})
	registry.Start(ctx)

	srv := server.New(cfg.Listen, registry, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	fmt.Printf("Serving metrics on ws://%s/ws/<kind>  (Ctrl+C to stop)\n", cfg.Listen)

	select {
	case err := <-serveErr:
		// Listener died on its own (port taken, fd limits). Stop
		// sampling and surface the error.
		registry.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info("[serve] shutting down")

	// Stop the samplers first: hubs close, every viewer gets a
	// going-away frame, write pumps return.
	registry.Stop()

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("[serve] shutdown: %v", err)
	}
	<-serveErr

	return nil
}
