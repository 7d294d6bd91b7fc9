package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/frstrtr/mongotron/internal/config"
	"github.com/frstrtr/mongotron/internal/event"
	"github.com/frstrtr/mongotron/internal/render"
	"github.com/frstrtr/mongotron/internal/session"
	"github.com/frstrtr/mongotron/internal/storage"
	"github.com/frstrtr/mongotron/internal/storage/postgres"
	"github.com/frstrtr/mongotron/internal/stream"
	"github.com/frstrtr/mongotron/internal/tron"
)

func main() {
	root := &cobra.Command{
		Use:          "monitor",
		Short:        "Tron address activity monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor addresses for on-chain activity",
		RunE:  runMonitor,
	}

	runCmd.Flags().String("api-url", "http://localhost:8080", "subscription API base URL")
	runCmd.Flags().String("ws-url", "", "event stream base URL (derived from api-url when empty)")
	runCmd.Flags().StringSlice("address", nil, "Tron addresses to monitor (comma-separated)")
	runCmd.Flags().Int64("owner", 0, "owner id the sessions belong to")
	runCmd.Flags().Bool("smart-only", false, "forward smart contract interactions only")
	runCmd.Flags().String("out", "", "optional output JSONL path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	runCmd.Flags().Duration("request-timeout", 10*time.Second, "subscription API request timeout")
	runCmd.Flags().Duration("handshake-timeout", 10*time.Second, "stream handshake timeout")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw notifications from a JSONL file",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input raw notifications JSONL")
	decodeCmd.Flags().String("out", "./data/events.jsonl", "output decoded events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().Bool("smart-only", false, "keep smart contract interactions only")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Addresses) == 0 {
		return fmt.Errorf("address list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := stream.NewClient(stream.Options{
		APIBase:          cfg.APIURL,
		WSBase:           cfg.WSURL,
		RequestTimeout:   cfg.RequestTimeout,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}, logger)
	if err != nil {
		return err
	}

	sinks := storage.MultiSink{render.NewConsoleSink(os.Stdout)}
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlSink(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	var filter event.FilterFunc
	mode := session.ModePlain
	if cfg.SmartOnly {
		filter = event.SmartContractOnly
		mode = session.ModeSmart
	}
	decoder := event.NewDecoder(tron.NewRegistry(), filter, logger)

	registry := session.NewRegistry(func(key session.Key) *session.Session {
		return session.New(key, nil, transport, decoder, sinks, logger)
	}, logger)

	logger.Info("monitor start",
		zap.String("api_url", cfg.APIURL),
		zap.Int("addresses", len(cfg.Addresses)),
		zap.Bool("smart_only", cfg.SmartOnly),
		zap.String("out", cfg.Out),
	)

	sessions := make([]*session.Session, 0, len(cfg.Addresses))
	for _, address := range cfg.Addresses {
		key := session.Key{Owner: cfg.Owner, Target: address, Mode: mode}
		sess, err := registry.Start(ctx, key)
		if err != nil {
			logger.Warn("session not started", zap.String("target", address), zap.Error(err))
			continue
		}
		sessions = append(sessions, sess)
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions started")
	}

	allDone := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, sess := range sessions {
			wg.Add(1)
			go func(s *session.Session) {
				defer wg.Done()
				<-s.Done()
			}(sess)
		}
		wg.Wait()
		close(allDone)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case <-allDone:
		logger.Info("all sessions ended")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stopped := registry.StopAll(shutdownCtx, cfg.Owner)
	logger.Info("sessions stopped", zap.Int("count", stopped))

	now := time.Now()
	for _, sess := range sessions {
		acc := sess.Stats()
		if acc == nil {
			continue
		}
		summary := acc.Summary(now)
		fields := []zap.Field{
			zap.String("target", sess.Key().Target),
			zap.String("state", sess.State().String()),
			zap.Duration("duration", summary.Duration),
			zap.Uint64("events", summary.Events),
			zap.Uint64("suppressed", summary.Suppressed),
			zap.Float64("events_per_sec", summary.EventsPerSec),
		}
		if summary.LastBlock > 0 {
			fields = append(fields,
				zap.Uint64("first_block", summary.FirstBlock),
				zap.Uint64("last_block", summary.LastBlock),
			)
		}
		if err := sess.Err(); err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("session summary", fields...)
	}

	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
