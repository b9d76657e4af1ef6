package main

import (
	"context"
	"strings"

	api "flux-backend/cmd/api"
	"flux-backend/internal/analysis"
	authUsecase "flux-backend/internal/auth/usecase"
	"flux-backend/internal/notification"
	taskRepo "flux-backend/internal/task/repository"
	taskUsecase "flux-backend/internal/task/usecase"
	"flux-backend/pkg/ai"
	"flux-backend/pkg/chroma"
	"flux-backend/pkg/config"
	"flux-backend/pkg/database"
	"flux-backend/pkg/drive"
	"flux-backend/pkg/fcm"
	"flux-backend/pkg/gemini"
	"flux-backend/pkg/logger"
	"flux-backend/pkg/mailer"
	"flux-backend/pkg/serviceaccount"
	"flux-backend/pkg/sheets"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	if missing := cfg.Validate(); len(missing) > 0 {
		log.Warnf("[Config] Missing settings: %s", strings.Join(missing, ", "))
	}

	// Google service account for Drive and Sheets
	creds, err := serviceaccount.ClientOption(ctx, cfg.GoogleServiceAccountJSON)
	if err != nil {
		log.Fatalf("Failed to load service account: %v", err)
	}

	// Task table backend
	table, err := newTable(ctx, cfg, creds)
	if err != nil {
		log.Fatalf("Failed to open task table: %v", err)
	}
	repo := taskRepo.NewTableRepository(table, cfg.TaskCacheTTL)
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize task table: %v", err)
	}

	// Evidence store
	evidence, err := drive.NewService(ctx, cfg.GoogleDriveFolderID, creds)
	if err != nil {
		log.Fatalf("Failed to initialize Drive: %v", err)
	}

	// Multimodal model
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiApiKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}
	defer geminiClient.Close()

	// Text provider for notes, chat and reports; Ollama settings are read per call
	settings := api.NewRuntimeSettings(cfg.OllamaBaseURL, cfg.OllamaModel)
	text, err := ai.NewTextGenerator(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		Gemini:        geminiClient,
		OllamaBaseURL: settings.OllamaBaseURL,
		OllamaModel:   settings.OllamaModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize text provider: %v", err)
	}
	log.Infof("[AI] Text provider: %s", cfg.AIProvider)

	engine := analysis.NewEngine(geminiClient, text, cfg.FilePollInterval)

	// Initialize use cases (dependency injection)
	pipelineUc := taskUsecase.NewPipelineUsecase(repo, evidence, engine, cfg.MaxFileSizeMB)
	taskUc := taskUsecase.NewTaskUsecase(repo, engine)
	reportUc := taskUsecase.NewReportUsecase(repo, engine)
	authUc := authUsecase.NewAuthUsecase(cfg)

	// Semantic search (optional)
	if cfg.ChromaAPIKey != "" {
		index, err := chroma.NewTaskIndex(ctx, cfg)
		if err != nil {
			log.Warnf("[Chroma] Semantic search disabled: %v", err)
		} else {
			pipelineUc.SetTaskIndex(index)
			taskUc.SetTaskIndex(index)
		}
	} else {
		log.Warn("[Chroma] CHROMA_API_KEY not set, search uses fuzzy matching only")
	}

	// Task events (optional)
	if notifier := newNotifier(ctx, cfg); notifier != nil {
		defer notifier.Close()
		pipelineUc.SetNotifier(notifier)
		taskUc.SetNotifier(notifier)
	}

	// Scrum email drafts (optional)
	if cfg.IMAPAddr != "" {
		drafts := mailer.NewDraftStore(mailer.IMAPConfig{
			Addr:     cfg.IMAPAddr,
			Username: cfg.IMAPUsername,
			Password: cfg.IMAPPassword,
			Mailbox:  cfg.IMAPDraftsMailbox,
		})
		reportUc.SetDraftSaver(drafts, cfg.ReportEmailFrom, cfg.ReportEmailTo)
		log.Infof("[Mailer] Drafts go to %s on %s", cfg.IMAPDraftsMailbox, cfg.IMAPAddr)
	}

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, authUc, taskUc, pipelineUc, reportUc, settings, geminiClient)

	log.Infof("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newTable(ctx context.Context, cfg *config.Config, creds option.ClientOption) (taskRepo.Table, error) {
	switch cfg.TaskTableBackend {
	case "memory":
		log.Warn("[TaskStore] Using in-memory table, tasks are lost on restart")
		return taskRepo.NewMemoryTable(), nil
	case "postgres":
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return taskRepo.NewGormTable(db, cfg.GoogleSheetsTab)
	default:
		return sheets.NewTable(ctx, cfg.GoogleSheetsID, cfg.GoogleSheetsTab, creds)
	}
}

// newNotifier returns nil when neither Pub/Sub nor FCM is configured.
func newNotifier(ctx context.Context, cfg *config.Config) *notification.Service {
	if cfg.GoogleProjectID == "" && cfg.FirebaseCredentials == "" {
		log.Warn("[Notification] Task events disabled")
		return nil
	}

	// FCM is optional, the notification service works without it
	var push notification.PushSender
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Warnf("[FCM] Push notifications disabled: %v", err)
		} else {
			push = fcmClient
		}
	}

	svc, err := notification.NewService(ctx, cfg.GoogleProjectID, cfg.TaskEventsTopic, cfg.GoogleServiceAccountJSON, push, cfg.FCMTopic)
	if err != nil {
		log.Errorf("[Notification] Failed to initialize: %v", err)
		return nil
	}
	return svc
}
