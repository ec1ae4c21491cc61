package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soochol/medsum/internal/api"
	"github.com/soochol/medsum/internal/config"
	"github.com/soochol/medsum/internal/crypto"
	"github.com/soochol/medsum/internal/db"
	"github.com/soochol/medsum/internal/extract"
	"github.com/soochol/medsum/internal/metrics"
	"github.com/soochol/medsum/internal/provider"
	"github.com/soochol/medsum/internal/repository"
	"github.com/soochol/medsum/internal/services"
	"github.com/soochol/medsum/internal/storage"
	"github.com/soochol/medsum/internal/summarize"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			serve()
			return
		case "migrate":
			migrate()
			return
		}
	}
	fmt.Println("medsum v0.1.0")
	fmt.Println("Usage: medsum serve | medsum migrate")
}

func loadConfig() *config.Config {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("dotenv error", "err", err)
		os.Exit(1)
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	return cfg
}

func migrate() {
	cfg := loadConfig()
	if cfg.Database.URL == "" {
		slog.Error("migrate requires DATABASE_URL")
		os.Exit(1)
	}
	ctx := context.Background()
	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}
	slog.Info("migrations applied")
}

func serve() {
	cfg := loadConfig()
	logger := slog.Default()

	enc, err := crypto.NewEncryptorFromSecret(cfg.Security.EncryptionKey, cfg.Security.EncryptionSalt)
	if err != nil {
		slog.Error("encryption setup failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		reports repository.ReportRepository = repository.NewMemoryReportRepository()
		users   repository.UserRepository   = repository.NewMemoryUserRepository()
	)
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database connect failed", "err", err)
			os.Exit(1)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			slog.Error("migration failed", "err", err)
			os.Exit(1)
		}
		reports = repository.NewPersistentReportRepository(repository.NewMemoryReportRepository(), database)
		users = repository.NewPersistentUserRepository(database)
		slog.Info("using postgres storage")
	} else {
		slog.Warn("DATABASE_URL not set, reports are kept in memory only")
	}

	if cfg.Provider.APIKey == "" {
		slog.Warn("OPENROUTER_API_KEY not set, summarization requests will be rejected upstream")
	}
	llm := provider.NewOpenAIProvider(cfg.Provider.Name, cfg.Provider.URL, cfg.Provider.APIKey, cfg.Provider.Timeout, logger)
	generator := summarize.NewGenerator(llm, cfg.Provider.Model, cfg.Provider.MaxTokens, logger)
	extractor := extract.NewExtractor(extract.Config{
		Tesseract: cfg.OCR.Tesseract,
		Language:  cfg.OCR.Language,
	}, logger)

	reportSvc := services.NewReportService(extractor, generator, enc, reports, logger)
	reportSvc.SetLimiter(services.NewUploadLimiter(services.UploadLimits{
		GlobalMax: cfg.Server.MaxConcurrentUploads,
		PerOwner:  cfg.Server.MaxUploadsPerUser,
	}))
	authSvc := services.NewAuthService(users, cfg.Security.JWTSecret, cfg.Security.JWTExpiresIn, logger)

	spool, err := storage.NewSpool(cfg.Server.UploadDir)
	if err != nil {
		slog.Error("upload spool setup failed", "err", err)
		os.Exit(1)
	}

	metrics.Init()
	srv := api.NewServer(reportSvc, authSvc, spool)
	srv.SetMaxUploadBytes(int64(cfg.Server.MaxUploadMB) << 20)
	srv.SetLogger(logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting medsum server", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
