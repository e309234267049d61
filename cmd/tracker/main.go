package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/snaik/crypto-tracker/internal/api"
	"github.com/snaik/crypto-tracker/internal/config"
	"github.com/snaik/crypto-tracker/internal/database"
	"github.com/snaik/crypto-tracker/internal/poller"
	"github.com/snaik/crypto-tracker/internal/sink"
	"github.com/snaik/crypto-tracker/internal/stream"
	"github.com/snaik/crypto-tracker/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tracker.yaml", "path to config file")
	flag.Parse()

	// .env is optional; ${VAR} references in the config resolve from it.
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// An explicitly passed config file must exist; the default path
	// falls back to built-in defaults when missing.
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	var cfg *config.Config
	var err error
	if explicit {
		cfg, err = config.LoadAndValidate(*configPath)
	} else {
		cfg, err = config.LoadOrDefault(*configPath)
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"interval", cfg.Tracker.Interval,
		"top_n", cfg.Tracker.TopN,
		"sheet", cfg.Sheet.Path,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client := api.NewClient(
		cfg.API.BaseURL,
		api.WithVsCurrency(cfg.API.VsCurrency),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(*cfg.API.MaxRetries, cfg.API.RetryDelay),
		api.WithLogger(logger),
	)

	// Provider reachability is informational only: a down provider at
	// startup just means skipped cycles until it recovers.
	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("provider ping failed", "error", err)
	} else {
		logger.Info("provider reachable")
	}
	pingCancel()

	sinks := []sink.Sink{sink.NewSheet(cfg.Sheet, logger)}

	if cfg.Sinks.Postgres.Enabled {
		pool, err := database.Connect(ctx, cfg.Sinks.Postgres.DB)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := sink.NewPostgres(pool, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure postgres schema", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, pg)
		logger.Info("postgres sink enabled", "host", cfg.Sinks.Postgres.DB.Host)
	}

	if cfg.Sinks.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Sinks.Redis.Addr,
			Password: cfg.Sinks.Redis.Password,
			DB:       cfg.Sinks.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		sinks = append(sinks, sink.NewRedis(rdb, cfg.Sinks.Redis.TTL, logger))
		logger.Info("redis sink enabled", "addr", cfg.Sinks.Redis.Addr)
	}

	if cfg.Sinks.Kafka.Enabled {
		writer := sink.NewKafkaWriter(cfg.Sinks.Kafka.Brokers, cfg.Sinks.Kafka.Topic)
		defer writer.Close()

		sinks = append(sinks, sink.NewKafka(writer, logger))
		logger.Info("kafka sink enabled", "topic", cfg.Sinks.Kafka.Topic)
	}

	var broadcaster *stream.Broadcaster
	if cfg.Sinks.Stream.Enabled {
		broadcaster = stream.NewBroadcaster(cfg.Sinks.Stream.BufferSize, logger)
		defer broadcaster.Close()

		sinks = append(sinks, broadcaster)
		logger.Info("stream sink enabled")
	}

	multi := sink.NewMulti(logger, sinks...)

	tracker := poller.New(poller.Config{
		Interval: cfg.Tracker.Interval,
		TopN:     cfg.Tracker.TopN,
	}, client, multi, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: createHandler(tracker, multi, broadcaster),
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := tracker.Start(ctx); err != nil {
		logger.Error("failed to start tracker", "error", err)
		os.Exit(1)
	}

	logger.Info("tracker running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := tracker.Stop(shutdownCtx); err != nil {
		logger.Error("tracker stop failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	logger.Info("tracker stopped")
}

// createHandler builds the HTTP surface: /health plus /ws when the
// stream sink is enabled.
func createHandler(tracker *poller.Tracker, multi *sink.Multi, broadcaster *stream.Broadcaster) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := tracker.Stats()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		health.Components["tracker"] = map[string]any{
			"cycles":         stats.Cycles,
			"fetch_errors":   stats.FetchErrors,
			"publish_errors": stats.PublishErrors,
			"last_success":   stats.LastSuccess,
		}
		health.Components["sinks"] = multi.Sinks()
		if broadcaster != nil {
			health.Components["stream_clients"] = broadcaster.ClientCount()
		}

		if stats.Cycles > 0 && stats.LastSuccess.IsZero() {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	if broadcaster != nil {
		mux.HandleFunc("/ws", broadcaster.Handler())
	}

	return mux
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
