package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "sharesphere-backend/internal/api/http"
	"sharesphere-backend/internal/config"
	"sharesphere-backend/internal/jobs"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/push"
	"sharesphere-backend/internal/repository/postgres"
	"sharesphere-backend/internal/scheduler"
	"sharesphere-backend/internal/security"
	"sharesphere-backend/internal/service"
	"sharesphere-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ShareSphere Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Image Storage
	imageStore, err := storage.NewImageStore(cfg.Storage.UploadDir, cfg.Storage.MaxFileSize, cfg.Storage.AllowedTypes)
	if err != nil {
		logger.Error("Failed to initialize image storage", "error", err)
		log.Fatalf("Failed to initialize image storage: %v", err)
	}
	logger.Info("Image storage initialized", "upload_dir", cfg.Storage.UploadDir)

	// Initialize realtime push hub
	hub := push.NewHub()

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("No SendGrid API key configured, outgoing email disabled")
		emailSvc = service.NewNoopEmailService()
	}

	// Initialize Services
	notifier := service.NewNotifier(store.NotificationRepository, hub)
	authSvc := service.NewAuthService(
		store.UserRepository,
		store.LedgerRepository,
		store.ReviewRepository,
		tokenManager,
		cfg.Marketplace.StartingTokens,
	)
	itemSvc := service.NewItemService(store.ItemRepository, store.TransactionRepository)
	txSvc := service.NewTransactionService(
		store.TransactionRepository,
		store.ItemRepository,
		store.UserRepository,
		notifier,
		emailSvc,
		hub,
	)
	ledgerSvc := service.NewLedgerService(store.LedgerRepository, store.UserRepository, notifier)
	complaintSvc := service.NewComplaintService(
		store.ComplaintRepository,
		store.TransactionRepository,
		store.UserRepository,
		notifier,
		emailSvc,
		cfg.Marketplace.BanThreshold,
	)
	reviewSvc := service.NewReviewService(
		store.ReviewRepository,
		store.TransactionRepository,
		store.UserRepository,
		notifier,
	)
	chatSvc := service.NewChatService(store.MessageRepository, store.TransactionRepository, hub)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	dashboardSvc := service.NewDashboardService(
		store.UserRepository,
		store.ItemRepository,
		store.TransactionRepository,
		store.NotificationRepository,
		txSvc,
	)

	// In-process scheduler for reminder jobs
	jobRunner := jobs.NewJobRunner(db, store, &jobs.Services{Email: emailSvc, Notifier: notifier}, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Set up HTTP server
	server := httpapi.NewServer(httpapi.ServerParams{
		Auth:      authSvc,
		Items:     itemSvc,
		Tx:        txSvc,
		Ledger:    ledgerSvc,
		Complaint: complaintSvc,
		Review:    reviewSvc,
		Chat:      chatSvc,
		Notes:     noteSvc,
		Dashboard: dashboardSvc,
		Tokens:    tokenManager,
		UserRepo:  store.UserRepository,
		Images:    imageStore,
		Hub:       hub,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), server.Router()); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
