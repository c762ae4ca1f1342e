package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"banketl/internal/collector"
	"banketl/internal/config"
	"banketl/internal/logger"
	"banketl/internal/pipeline"
	"banketl/internal/progress"
	"banketl/internal/scheduler"
	"banketl/internal/store"
	"banketl/internal/transform"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal(err, "load config")
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err, "config validation")
	}

	fetcher := collector.NewFetcher(cfg.Source.URL, cfg.Source.Timeout, cfg.Source.Proxy)
	prog := progress.New(cfg.Progress.LogPath)
	logger.Get().WithFields(logrus.Fields{
		"fetcher":      fetcher.Name(),
		"driver":       cfg.Database.Driver,
		"progress_log": prog.Path(),
	}).Info("banketl starting")

	p := pipeline.New(cfg, pipeline.Deps{
		Fetcher:  fetcher,
		Files:    transform.OSFiles{},
		Opener:   store.DSNOpener{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN},
		Progress: prog,
		Out:      os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, p)
	if _, err := sched.RunNow(); err != nil {
		stop()
		logger.Fatal(err, "pipeline run")
	}

	if cfg.Schedule.Cron == "" {
		return
	}
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		stop()
		logger.Fatal(err, "register schedule")
	}
	sched.Start()
	logger.Get().WithField("cron", cfg.Schedule.Cron).Info("waiting for next scheduled run, press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping...")
	sched.Stop()
}
