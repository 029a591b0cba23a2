// Command radar-web serves the Relationship Radar screens as a JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/giftology/radar/internal/api"
	"github.com/giftology/radar/internal/config"
	"github.com/giftology/radar/internal/logging"
	"github.com/giftology/radar/internal/server"
	"github.com/giftology/radar/pkg/sdk"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "radar-web:", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := pflag.StringP("config", "c", "", "Config file (default: $RADAR_CONFIG)")
	pflag.Parse()

	cfg, err := config.Load(config.Path(*configFlag))
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeouts := sdk.WithTimeoutHandler(func(endpoint string) {
		log.Warn("service timed out", zap.String("endpoint", endpoint))
	})
	client, closeStore, err := sdk.NewFromConfig(ctx, cfg, log, timeouts)
	if err != nil {
		return err
	}

	srv := server.New(cfg.HTTP.Addr, api.NewHandler(client, log), log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen() }()

	select {
	case err = <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if serr := srv.Stop(shutdownCtx); serr != nil && !errors.Is(serr, context.DeadlineExceeded) {
			err = serr
		}
		<-errCh
	}

	log.Info("finalizing session writes")
	if cerr := closeStore(); cerr != nil {
		log.Warn("failed to close session store", zap.Error(cerr))
	}
	return err
}
