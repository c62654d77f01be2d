// Package main serves the built-in football dataset on the two ports the
// default configuration points at: the paginated players API and the
// collection API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pitabwire/touchline/internal/config"
	"github.com/pitabwire/touchline/internal/fixture"
	"github.com/pitabwire/touchline/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	playersAddr := flag.String("players-addr", ":8080", "listen address of the paginated players API")
	footballAddr := flag.String("football-addr", ":8000", "listen address of the collection API")
	latency := flag.Duration("latency", 0, "delay added to every response")
	flag.Parse()

	logger, err := observability.NewLogger(config.ObservabilityConfig{LogLevel: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	handler := fixture.NewServer(nil, fixture.WithLatency(*latency))
	servers := []*http.Server{
		{Addr: *playersAddr, Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		{Addr: *footballAddr, Handler: handler, ReadHeaderTimeout: 5 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("fixture server started", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("fixture shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("fixture server error", zap.Error(err))
		return 1
	}
	logger.Info("fixture servers stopped")
	return 0
}
