// Command leadsd serves the BuscarLead HTTP API and runs the maintenance
// worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "leadsd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	s, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	a, err := buildApp(ctx, s, nil)
	if err != nil {
		return err
	}
	defer a.close()

	httpServer := &http.Server{
		Addr:              a.daemon.HTTP.Addr,
		Handler:           a.server.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.runWorker(gctx)
	})
	g.Go(func() error {
		return a.runScheduler(gctx, a.cfg.DedupeInterval())
	})

	err = g.Wait()
	a.logger.Info("leadsd stopped")
	return err
}
