package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pcbwatch/internal/config"
	"pcbwatch/internal/daemon"
	"pcbwatch/internal/history"
	"pcbwatch/internal/logging"
	"pcbwatch/internal/processor"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// The pass ledger is observability only; a broken database must not
	// keep the daemon from monitoring.
	ledger, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history ledger, continuing without it", logging.Args(logging.Error(err))...)
		ledger = nil
	}

	proc, err := processor.New(cfg, logger, ledger)
	if err != nil {
		logger.Error("create processor", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}

	d, err := daemon.New(cfg, logger, proc, ledger)
	if err != nil {
		logger.Error("create daemon", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Args(logging.Error(err))...)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("pcbwatchd shutting down")
}
