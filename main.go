package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/adilhn/supportflow/config"
	"github.com/adilhn/supportflow/db"
	"github.com/adilhn/supportflow/docstore"
	"github.com/adilhn/supportflow/logging"
	"github.com/adilhn/supportflow/pipeline"
	"github.com/adilhn/supportflow/server"
	"github.com/adilhn/supportflow/services/llm_service"
	"github.com/adilhn/supportflow/services/notification_service"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	if _, err := store.EnsureTestUser(ctx); err != nil {
		log.Fatalf("Failed to seed test user: %v", err)
	}
	if err := store.LoadPersonalData(ctx, cfg.PersonalDataDir); err != nil {
		// The personalised handler retries ingestion per query, so a missing
		// data directory at boot is not fatal.
		logger.Warn("Personal data ingestion at startup failed",
			slog.String("error", err.Error()))
	}

	registry := pipeline.NewRegistry()
	triage, routing := registerAgents(cfg, registry, store, logger)

	r := server.SetupRoutes(cfg, registry, triage, routing, store, logger)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(cfg, n)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.QueryTimeout + 10*time.Second,
		}
		server.ServeDevelopment(srv)
	}
}

func openStore(cfg config.Config, logger *slog.Logger) (*db.Store, error) {
	if cfg.DBDriver == db.DriverPostgres {
		return db.Open(db.DriverPostgres, cfg.DatabaseURL, logger)
	}
	return db.Open(db.DriverSQLite, cfg.DBPath, logger)
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func registerAgents(cfg config.Config, registry *pipeline.Registry, store *db.Store, logger *slog.Logger) (triage, routing pipeline.Step) {
	deepseek := llm_service.NewDeepSeekService(cfg.DeepSeekAPIURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel, logger)
	registry.RegisterLLMService("deepseek", deepseek)

	registry.RegisterHandler(pipeline.AgentGeneralInformation, &pipeline.GeneralInformationStep{
		LLMService: deepseek,
		Store:      docstore.New(cfg.GeneralDataDir),
		Logger:     logger,
	})

	registry.RegisterHandler(pipeline.AgentPersonalisedRAG, &pipeline.PersonalisedRAGStep{
		LLMService: deepseek,
		Store:      store,
		DataDir:    cfg.PersonalDataDir,
		Logger:     logger,
	})

	var notifier notification_service.NotificationService
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.SupportTeamPhone != "" {
		notifier = notification_service.NewSMSNotificationService(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			cfg.TwilioFromNumber, cfg.SupportTeamPhone, logger)
	} else {
		logger.Warn("Twilio is not configured, high-priority ticket notifications are disabled")
	}

	registry.RegisterHandler(pipeline.AgentEscalation, &pipeline.EscalationStep{
		Tickets:  store,
		Notifier: notifier,
		Logger:   logger,
	})

	return &pipeline.TriageStep{LLMService: deepseek, Logger: logger},
		&pipeline.RoutingStep{LLMService: deepseek, Logger: logger}
}

func initLogger(logDir string) (*slog.Logger, error) {
	fileHandler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
