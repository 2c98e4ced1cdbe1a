package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/accountant-ai/backend/internal/agent"
	"github.com/accountant-ai/backend/internal/api/handlers"
	"github.com/accountant-ai/backend/internal/api/middleware"
	"github.com/accountant-ai/backend/internal/archive"
	"github.com/accountant-ai/backend/internal/config"
	"github.com/accountant-ai/backend/internal/gemini"
	"github.com/accountant-ai/backend/internal/logger"
	"github.com/accountant-ai/backend/internal/plaidfeed"
	"github.com/accountant-ai/backend/internal/store/inmemory"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model gateway")
	}

	var feed handlers.BankFeed
	plaidCfg := plaidfeed.Config{
		ClientID:    cfg.PlaidClientID,
		Secret:      cfg.PlaidSecret,
		Environment: cfg.PlaidEnv,
	}
	if plaidCfg.Enabled() {
		client, err := plaidfeed.NewClient(plaidCfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create bank feed client")
		}
		feed = client
	} else {
		log.Warn().Msg("No Plaid credentials configured - bank feed loading is disabled")
	}

	var archiver archive.Archiver = archive.Disabled{}
	if cfg.ReceiptBucket != "" {
		gcs, err := archive.NewGCS(ctx, cfg.ReceiptBucket, cfg.GoogleCredentials, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create receipt archiver")
		}
		defer gcs.Close()
		archiver = gcs
	} else {
		log.Warn().Msg("No receipt bucket configured - receipt archiving is disabled")
	}

	st := inmemory.NewStore()
	router := agent.NewRouter(gateway, log)
	chatSvc := agent.NewService(st, gateway, router, log)

	chatHandler := handlers.NewChatHandler(chatSvc, log)
	txHandler := handlers.NewTransactionHandler(st, feed, cfg.SeedFile, log)
	receiptHandler := handlers.NewReceiptHandler(st, gateway, archiver, log)
	metaHandler := handlers.NewMetaHandler(st, gateway.Model(), log)

	mux := http.NewServeMux()

	mux.HandleFunc("/load-transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			txHandler.Load(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/get-transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			txHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chatHandler.Chat(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/upload-receipt", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/session/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			metaHandler.Session(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/personalities", metaHandler.Personalities)
	mux.HandleFunc("/health", metaHandler.Health)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("model", gateway.Model()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Server exited")
}
