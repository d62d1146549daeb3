// cmd/chat-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"instantcredit-agents/internal/agents/sales"
	uwagent "instantcredit-agents/internal/agents/underwriting"
	"instantcredit-agents/internal/agents/verification"
	"instantcredit-agents/internal/api"
	"instantcredit-agents/internal/common/config"
	"instantcredit-agents/internal/common/database"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/observability"
	"instantcredit-agents/internal/common/zoho"
	"instantcredit-agents/internal/creditbureau"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/dispatcher"
	"instantcredit-agents/internal/kyc"
	"instantcredit-agents/internal/notify"
	"instantcredit-agents/internal/session"
	"instantcredit-agents/internal/transcript"
	"instantcredit-agents/internal/underwriting"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chat server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("chat-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Customer directory: PostgreSQL when enabled, seeded demo otherwise ---
	var dir directory.Directory
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		dir = directory.NewPostgres(pg.DB)
	} else {
		dir = directory.NewInMemory()
		zapLog.Info("Using in-memory demo customer directory")
	}

	// --- KYC provider ---
	var verifier kyc.Verifier
	switch cfg.KYC.Provider {
	case "zoho":
		crm := zoho.NewCRMClient(cfg.KYC.Zoho.OAuthToken, cfg.KYC.Zoho.BaseURL)
		verifier = kyc.NewZohoVerifier(crm, log)
		zapLog.Info("KYC provider: Zoho CRM")
	default:
		verifier = kyc.NewSimulated(cfg.KYC.SuccessRate, log)
		zapLog.Info("KYC provider: simulated", zap.Float64("successRate", cfg.KYC.SuccessRate))
	}

	// --- Optional transcript audit trail ---
	var indexer *transcript.Indexer
	if cfg.Transcript.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		indexer = transcript.NewIndexer(esClient, cfg.Database.Elasticsearch.Index, log)
	}

	// --- Optional sanction letter notifications ---
	var notifier *notify.Notifier
	if cfg.Notifications.Enabled {
		notifier, err = notify.NewNotifier(ctx, cfg.Notifications.AWSRegion, cfg.Notifications.SenderEmail, cfg.Notifications.SMSEnabled, log)
		if err != nil {
			zapLog.Fatal("notifier initialization failed", zap.Error(err))
		}
		zapLog.Info("Sanction letter notifications enabled", zap.String("region", cfg.Notifications.AWSRegion))
	}

	// --- Wire the conversation flow ---
	engine := underwriting.NewEngine(log)
	disp := dispatcher.New(
		sales.NewHandler(log),
		verification.NewHandler(dir, verifier, log),
		uwagent.NewHandler(dir, engine, log),
		log,
	)
	sessions := session.NewStore(rdb, time.Duration(cfg.Session.TTLMinutes)*time.Minute, log)
	bureau := creditbureau.NewService(dir, log)

	server := api.NewServer(api.Options{
		Dispatcher: disp,
		Sessions:   sessions,
		Directory:  dir,
		Bureau:     bureau,
		Engine:     engine,
		Verifier:   verifier,
		Notifier:   notifier,
		Transcript: indexer,
		Redis:      rdb,
		Obs:        obs,
		Logger:     log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Chat server stopped gracefully")
}
