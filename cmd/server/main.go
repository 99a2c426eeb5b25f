// @title OneCore Intake API
// @version 1.0
// @description CSV validation, AI document analysis and audit log service.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"onecore/internal/ai"
	"onecore/internal/ai/claude"
	"onecore/internal/ai/gemini"
	"onecore/internal/ai/openai"
	"onecore/internal/analyzer"
	"onecore/internal/config"
	"onecore/internal/csvvalidator"
	"onecore/internal/handler"
	"onecore/internal/metrics"
	"onecore/internal/pdftext"
	"onecore/internal/port"
	"onecore/internal/repository/postgres"
	"onecore/internal/router"
	"onecore/internal/service"
	s3storage "onecore/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	ai.RegisterProvider("openai", func(cfg *config.AIConfig) port.Completer {
		return openai.NewClient(cfg)
	})
	ai.RegisterProvider("claude", func(cfg *config.AIConfig) port.Completer {
		return claude.NewClient(cfg)
	})
	ai.RegisterProvider("gemini", func(cfg *config.AIConfig) port.Completer {
		return gemini.NewClient(cfg)
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch {
	case cfg.Log.Level == "debug":
		gin.SetMode(gin.DebugMode)
	case cfg.Server.Environment == "production":
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewUploadedFileRepo(db)
	rowRepo := postgres.NewCSVRowRepo(db)
	validationRepo := postgres.NewFileValidationRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	extractionRepo := postgres.NewExtractionRepo(db)
	eventRepo := postgres.NewEventLogRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	ensureCtx, cancelEnsure := context.WithTimeout(context.Background(), 30*time.Second)
	err = s3Client.EnsureBucket(ensureCtx, cfg.S3.Bucket)
	cancelEnsure()
	if err != nil {
		return fmt.Errorf("failed to ensure bucket %s: %w", cfg.S3.Bucket, err)
	}

	m := metrics.New()

	// Initialize AI; a nil completer leaves documents pending
	completer, err := ai.NewCompleter(&cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	if completer == nil {
		log.Printf("AI analysis disabled: no API key configured")
	} else {
		log.Printf("AI analysis enabled: provider=%s", cfg.AI.Provider)
	}
	docAnalyzer := analyzer.New(metrics.InstrumentCompleter(completer, m), pdftext.New(), cfg.AI.CallTimeout)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	eventSvc := service.NewEventService(eventRepo)
	engine := csvvalidator.NewEngine(cfg.CSV.NumericColumns)
	fileSvc := service.NewFileService(fileRepo, rowRepo, validationRepo, s3Client, engine, m, &cfg.S3, &cfg.Upload)
	docSvc := service.NewDocumentService(docRepo, extractionRepo, s3Client, docAnalyzer, eventSvc, m, &cfg.S3, &cfg.Upload)

	// Setup router
	r := router.Setup(authSvc, router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		File:     handler.NewFileHandler(fileSvc),
		Document: handler.NewDocumentHandler(docSvc),
		Event:    handler.NewEventHandler(eventSvc),
		Health:   handler.NewHealthHandler(db),
	}, m, cfg.CORS, cfg.RateLimit)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		serveErr <- srv.ListenAndServe()
	}()

	eventSvc.LogSystem(context.Background(), "Servidor iniciado", map[string]any{
		"environment": cfg.Server.Environment,
		"ai_enabled":  completer != nil,
		"pid":         os.Getpid(),
	})

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
