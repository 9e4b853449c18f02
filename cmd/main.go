package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"audiomirror/internal/config"
	"audiomirror/internal/encode"
	"audiomirror/internal/task"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.DefaultContextLogger = &log.Logger

	args, err := config.ParseArgs(argv)
	if err != nil {
		if !errors.Is(err, config.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		fmt.Fprint(os.Stdout, config.Usage)
		return 0
	}

	_ = godotenv.Load()
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		log.Error().Err(err).Str("path", args.ConfigPath).Msg("failed to load config")
		return 1
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Error().Err(err).Msg("invalid environment override")
		return 1
	}
	setLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := buildManager(cfg)
	report, err := manager.Run(ctx, args.SourceRoot, args.DestRoot, args.ManifestPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("run interrupted")
		} else {
			log.Error().Err(err).Str("src", args.SourceRoot).Str("dst", args.DestRoot).Msg("run failed")
		}
		return 1
	}
	if report.Failed() {
		for _, failure := range report.Failures {
			fmt.Fprintln(os.Stderr, failure.Error())
		}
		return 1
	}
	return 0
}

func buildManager(cfg config.Config) *task.Manager {
	encoder := encode.FFmpeg{
		Path:        cfg.EncoderPath,
		SampleRate:  cfg.SampleRate,
		BitRateKbps: cfg.BitRateKbps,
		Channels:    cfg.Channels,
		Format:      encode.FormatForExtension(cfg.TargetExtension),
	}
	return task.NewManager(task.Options{
		ConvertFrom:       cfg.ConvertFrom,
		TargetExtension:   cfg.TargetExtension,
		Workers:           cfg.BatchWorkers(),
		SequentialBatches: cfg.SequentialBatches(),
		FailFast:          cfg.FailFast,
		ReportDir:         cfg.ReportDir,
	}, encoder)
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		log.Warn().Str("log_level", level).Msg("unknown log level, using info")
		return
	}
	zerolog.SetGlobalLevel(parsed)
}
