// Точка входа Upload Module — модуль загрузки файлов FileNest.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// собирает реестр storage backends (media nodes + опциональный GCS fallback),
// создаёт сервисный слой и API handlers, запускает topologymetrics,
// HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/filenest/upload-module/internal/api/handlers"
	"github.com/bigkaa/filenest/upload-module/internal/api/middleware"
	"github.com/bigkaa/filenest/upload-module/internal/backend"
	"github.com/bigkaa/filenest/upload-module/internal/config"
	"github.com/bigkaa/filenest/upload-module/internal/database"
	"github.com/bigkaa/filenest/upload-module/internal/notifier"
	"github.com/bigkaa/filenest/upload-module/internal/repository"
	"github.com/bigkaa/filenest/upload-module/internal/server"
	"github.com/bigkaa/filenest/upload-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Upload Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("UM_DEPHEALTH_GROUP") == "" {
		logger.Warn("UM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Реестр storage backends: media nodes в порядке конфигурации,
	// терминальный GCS fallback — последним
	registry := make(backend.Registry, 0, len(cfg.MediaNodes)+1)
	mediaNodeURLs := make([]string, 0, len(cfg.MediaNodes))
	for i, node := range cfg.MediaNodes {
		name := fmt.Sprintf("media-node-%d", i)
		registry = append(registry, backend.NewMediaNodeClient(name, node.URL, node.Key, cfg.MediaNodeTimeout, logger))
		mediaNodeURLs = append(mediaNodeURLs, node.URL)
	}
	if cfg.GCSBucket != "" {
		gcsUploader, gcsErr := backend.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GCSPublicURL, logger)
		if gcsErr != nil {
			logger.Error("Ошибка создания GCS uploader", slog.String("error", gcsErr.Error()))
			os.Exit(1)
		}
		defer gcsUploader.Close()
		registry = append(registry, gcsUploader)
	}
	if len(registry) == 0 {
		logger.Error("Не настроен ни один storage backend (UM_MEDIA_NODES / UM_GCS_BUCKET)")
		os.Exit(1)
	}
	logger.Info("Реестр backends собран",
		slog.Int("media_nodes", len(cfg.MediaNodes)),
		slog.Bool("gcs_fallback", cfg.GCSBucket != ""),
	)

	// 6. Repository и сервисный слой
	fileRepo := repository.NewFileRepository(pool)

	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	quota := service.NewQuotaGuard(fileRepo, cfg.MaxFileSize, cfg.StorageLimit, logger)
	fileSvc := service.NewFileService(fileRepo, cache, quota, logger)

	// Notifier — опциональный webhook об успешных загрузках
	var uploadNotifier service.Notifier
	if cfg.NotifyURL != "" {
		uploadNotifier = notifier.New(cfg.NotifyURL, cfg.NotifyTimeout, logger)
		logger.Info("Webhook-уведомления включены", slog.String("url", cfg.NotifyURL))
	}

	uploadSvc := service.NewUploadService(quota, registry, fileRepo, cache, uploadNotifier, cfg.UploadTimeout, logger)

	// 7. Readiness checkers (PostgreSQL + Identity Provider)
	pgChecker := database.NewReadinessChecker(pool)
	idpChecker := middleware.NewIdPReadinessChecker(cfg.JWKSURL, cfg.JWKSClientTimeout)
	healthHandler := handlers.NewHealthHandler(pgChecker, idpChecker)

	// 8. API handler (реализует generated.ServerInterface)
	apiHandler := handlers.NewAPIHandler(uploadSvc, fileSvc, healthHandler, logger)

	// 9. JWT middleware
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWKSURL,
		cfg.JWTIssuer,
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer jwtAuth.Close()
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL + media nodes)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"upload-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseDSN(),
		mediaNodeURLs,
		cfg.DephealthCheckInterval,
		cfg.DephealthIsEntry,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. Создание и запуск HTTP-сервера.
	// JWT применяется ко всем путям, кроме health и metrics.
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		server.JWTAuthWithExclusions(jwtAuth.Middleware(), "/health/", "/metrics"),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 12. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Upload Module остановлен")
}
