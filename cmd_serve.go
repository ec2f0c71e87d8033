package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// proshop serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := boot(ctx)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	app, cleanup, err := newApp(ctx, rt)
	if err != nil {
		rt.log.Error("failed to build application", zap.Error(err))
		_ = rt.store.Close(context.Background())
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		rt.log.Info("server listening", zap.String("addr", rt.cfg.Addr()), zap.String("env", rt.cfg.Env))
		listenErr <- app.Listen(rt.cfg.Addr())
	}()

	select {
	case err = <-listenErr:
		rt.log.Error("server failed", zap.Error(err))
	case <-ctx.Done():
		rt.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if serr := app.ShutdownWithContext(shutdownCtx); serr != nil {
			rt.log.Warn("error during shutdown", zap.Error(serr))
		}
		cancel()
	}

	cleanup()
	if cerr := rt.store.Close(context.Background()); cerr != nil {
		rt.log.Warn("failed to close database", zap.Error(cerr))
	}
	rt.log.Info("server stopped")
	return err
}
