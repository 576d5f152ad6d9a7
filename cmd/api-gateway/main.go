package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/amptron-th/testdoc-api/api/swagger"
	"github.com/amptron-th/testdoc-api/internal/handler"
	"github.com/amptron-th/testdoc-api/internal/middleware"
	"github.com/amptron-th/testdoc-api/internal/repository"
	"github.com/amptron-th/testdoc-api/internal/service"
	"github.com/amptron-th/testdoc-api/pkg/cache"
	"github.com/amptron-th/testdoc-api/pkg/compose"
	"github.com/amptron-th/testdoc-api/pkg/config"
	"github.com/amptron-th/testdoc-api/pkg/logger"
	"github.com/amptron-th/testdoc-api/pkg/mail"
	corsmiddleware "github.com/amptron-th/testdoc-api/pkg/middleware/cors"
	reqidmiddleware "github.com/amptron-th/testdoc-api/pkg/middleware/requestid"
	"github.com/amptron-th/testdoc-api/pkg/qrcode"
	"github.com/amptron-th/testdoc-api/pkg/storage"
)

// @title AITESTDOC API
// @version 1.0.0
// @description Document consolidation, QR code generation and delivery
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ledger := buildLedger(cfg, logr)
	store, authSvc := buildStore(cfg, logr)
	transport := buildTransport(cfg, logr)

	codes := qrcode.NewGenerator(cfg.QR, logr)
	consolidator := compose.NewConsolidator(compose.NewCompositor(logr), logr)

	var logo []byte
	if cfg.QR.BrandMarkPath != "" {
		if data, err := os.ReadFile(cfg.QR.BrandMarkPath); err == nil {
			logo = data
		} else {
			logr.Warn("brand image unavailable for notifications", zap.Error(err))
		}
	}

	metricsSvc := service.NewMetricsService()
	uploadSvc := service.NewUploadService(consolidator, store, codes, logr)
	emailSvc := service.NewEmailService(transport, ledger, uploadSvc, cfg.Mail.Subject, cfg.Mail.FromName, logo, logr)

	uploadHandler := handler.NewUploadHandler(uploadSvc, authSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes)
	emailHandler := handler.NewEmailHandler(emailSvc, metricsSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.GET("/oauth/callback", authHandler.Callback)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/upload", uploadHandler.Upload)
		api.POST("/send-email", emailHandler.Send)
		api.POST("/send-email/bulk", emailHandler.SendBulk)
		api.POST("/send-email/resend", emailHandler.Resend)
		api.GET("/email-history", emailHandler.History)
		api.GET("/auth-status", authHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"store", cfg.Store.Backend,
		"mail", cfg.Mail.Mode,
		"ledger", cfg.Ledger.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func buildLedger(cfg *config.Config, logr *zap.Logger) repository.Ledger {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis unavailable", "error", err)
		}
		return repository.NewRedisLedger(client, cfg.Ledger.Capacity)
	case config.LedgerBackendPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
			cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			logr.Sugar().Fatalw("postgres unavailable", "error", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		return repository.NewPostgresLedger(db, cfg.Ledger.Capacity)
	default:
		return repository.NewMemoryLedger(cfg.Ledger.Capacity)
	}
}

func buildStore(cfg *config.Config, logr *zap.Logger) (storage.ObjectStore, *service.AuthService) {
	switch cfg.Store.Backend {
	case config.StoreBackendS3:
		store, err := storage.NewS3Store(cfg.Store, logr)
		if err != nil {
			logr.Sugar().Fatalw("object store unavailable", "error", err)
		}
		return store, nil
	default:
		authSvc, err := service.NewAuthService(cfg.Store.Drive, logr)
		if err != nil {
			logr.Sugar().Fatalw("drive credentials unavailable", "error", err)
		}
		return storage.NewDriveStore(authSvc, cfg.Store, logr), authSvc
	}
}

func buildTransport(cfg *config.Config, logr *zap.Logger) mail.Transport {
	switch cfg.Mail.Mode {
	case config.MailModeSES:
		transport, err := mail.NewSESTransport(context.Background(), cfg.Mail, logr)
		if err != nil {
			logr.Sugar().Fatalw("ses transport unavailable", "error", err)
		}
		return transport
	default:
		return mail.NewSMTPTransport(cfg.Mail, logr)
	}
}
