package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/Fasterbrick/FetchOHLCMT5/config"
	"github.com/Fasterbrick/FetchOHLCMT5/ingest"
	"github.com/Fasterbrick/FetchOHLCMT5/logger"
	"github.com/Fasterbrick/FetchOHLCMT5/mt5"
	"github.com/Fasterbrick/FetchOHLCMT5/store"
)

// runCollector is the shared body of the daily and minutes commands:
// establish both connections, run the loop until interrupted, and release
// the store before the terminal connection on every exit path.
func runCollector(defaults config.Config, configPath string) error {
	cfg := defaults
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = *loaded
	}

	log, sync, err := logger.New(zapcore.InfoLevel)
	if err != nil {
		return err
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := mt5.NewClient(cfg.BridgeURL)
	if err := client.Initialize(ctx); err != nil {
		return err
	}
	log.Infof("terminal connected in headless mode")
	defer func() {
		if err := client.Shutdown(context.Background()); err != nil {
			log.Errorf("shutdown terminal: %s", err)
		} else {
			log.Infof("terminal connection shut down")
		}
	}()

	st, err := store.Open(cfg.DBPath, cfg.Table)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Errorf("close store: %s", err)
		} else {
			log.Infof("database connection closed")
		}
	}()

	src := client.Rates(cfg.Symbol, mt5.TimeframeFor(cfg.Granularity))
	loop := ingest.New(cfg, src, st, log)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("collection stopped: %s", err)
		return err
	}
	log.Infof("terminated by user")
	return nil
}
