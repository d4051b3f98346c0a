package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/battwarn/internal/config"
	"codeberg.org/mutker/battwarn/internal/errors"
	"codeberg.org/mutker/battwarn/internal/logger"
	"codeberg.org/mutker/battwarn/internal/metrics"
	"codeberg.org/mutker/battwarn/internal/monitor"
	"codeberg.org/mutker/battwarn/internal/notify"
	"codeberg.org/mutker/battwarn/internal/pid"
	"codeberg.org/mutker/battwarn/internal/telemetry"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(level, logger.IsService())
	log := logger.New()
	log.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logAppError(err, "Failed to acquire PID file")
		return 1
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	thresholds, err := cfg.Thresholds()
	if err != nil {
		logAppError(err, "Invalid thresholds")
		return 1
	}

	recorder, err := metrics.NewService(metricsConfig(cfg), log)
	if err != nil {
		logAppError(err, "Failed to initialize metrics")
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close metrics")
		}
	}()

	notifier, err := notify.New(notifyTemplate(cfg))
	if err != nil {
		logAppError(err, "Failed to connect to the notification service")
		return 1
	}
	defer notifier.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	m, err := monitor.New(ctx, telemetry.New(), notifier, thresholds,
		monitor.WithInterval(time.Duration(cfg.Interval)*time.Second),
		monitor.WithRecorder(recorder),
		monitor.WithLogger(log),
	)
	if err != nil {
		logAppError(err, "Failed to enumerate batteries")
		return 1
	}

	if err := m.Run(ctx); err != nil {
		logAppError(err, "Error in main loop")
		return 1
	}

	log.Info().Msg("Exiting...")
	return 0
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logAppError(err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}

func metricsConfig(cfg *config.Config) metrics.Config {
	mc := metrics.DefaultConfig()
	mc.Enabled = cfg.Metrics
	mc.DBPath = cfg.MetricsDB
	return mc
}

func notifyTemplate(cfg *config.Config) notify.Template {
	tmpl := notify.DefaultTemplate()
	tmpl.Icon = cfg.Icon
	tmpl.Sound = cfg.Sound
	tmpl.Timeout = time.Duration(cfg.Timeout) * time.Second
	if u, ok := notify.ParseUrgency(cfg.Urgency); ok {
		tmpl.Urgency = u
	}
	return tmpl
}
