// upload.go — оркестратор загрузки файлов с failover по backends.
//
// Полный pipeline запроса: лимит размера → квота → родительская папка →
// backends по порядку → вставка FileRecord → ответ с телеметрией failover.
// Попытки backends строго последовательны: детерминированное предпочтение
// провайдера важнее латентности попыток.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apierrors "github.com/bigkaa/filenest/upload-module/internal/api/errors"
	"github.com/bigkaa/filenest/upload-module/internal/backend"
	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
	"github.com/bigkaa/filenest/upload-module/internal/repository"
)

// Prometheus-метрики загрузки.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "um_uploads_total",
		Help: "Общее количество запросов загрузки (по статусу).",
	}, []string{"status"})

	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "um_upload_duration_seconds",
		Help:    "Длительность загрузки (от валидации до вставки записи).",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "um_upload_bytes_total",
		Help: "Общее количество загруженных байт.",
	})

	backendAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "um_backend_attempts_total",
		Help: "Попытки загрузки на backends (по backend-у и статусу).",
	}, []string{"backend", "status"})

	fallbackUploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "um_fallback_uploads_total",
		Help: "Загрузки, завершившиеся не на первом backend-е. " +
			"Рост — сигнал деградации основного провайдера.",
	})
)

// Notifier — внешний коллаборатор уведомлений об успешной загрузке.
// Вызывается fire-and-forget: оркестратор никогда не ждёт результата.
type Notifier interface {
	UploadSucceeded(record *model.FileRecord, usedFallback bool, fallbackAccount int)
}

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Data — содержимое файла
	Data []byte
	// Filename — оригинальное имя файла (сохраняется только в FileRecord.Name)
	Filename string
	// ContentType — MIME-тип файла
	ContentType string
	// Size — размер файла в байтах
	Size int64
	// OwnerID — верифицированный идентификатор владельца
	OwnerID string
	// ParentID — UUID родительской папки (nil — корень)
	ParentID *string
}

// UploadResult — результат успешной загрузки.
type UploadResult struct {
	// Record — персистированная запись файла
	Record *model.FileRecord
	// UsedFallback — true, если загрузка прошла не на первом backend-е
	UsedFallback bool
	// FallbackAccount — индекс успешного backend-а
	// (терминальный fallback нумеруется за последним primary)
	FallbackAccount int
}

// UploadError — ошибка загрузки с HTTP-кодом.
// Message — обобщённый текст для клиента; детали провайдеров не утекают.
type UploadError struct {
	StatusCode int
	Code       string
	Message    string
	// Details — машиночитаемые поля контракта (лимиты, размеры)
	Details map[string]any
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UploadService — оркестратор загрузки.
type UploadService struct {
	quota         *QuotaGuard
	registry      backend.Registry
	fileRepo      repository.FileRepository
	cache         *CacheService
	notifier      Notifier
	uploadTimeout time.Duration
	logger        *slog.Logger
}

// NewUploadService создаёт оркестратор загрузки.
// notifier может быть nil — уведомления отключены.
func NewUploadService(
	quota *QuotaGuard,
	registry backend.Registry,
	fileRepo repository.FileRepository,
	cache *CacheService,
	notifier Notifier,
	uploadTimeout time.Duration,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		quota:         quota,
		registry:      registry,
		fileRepo:      fileRepo,
		cache:         cache,
		notifier:      notifier,
		uploadTimeout: uploadTimeout,
		logger:        logger.With(slog.String("component", "upload_service")),
	}
}

// MaxFileSize возвращает настроенный лимит размера одного файла.
func (s *UploadService) MaxFileSize() int64 {
	return s.quota.MaxFileSize()
}

// CheckFileSize проверяет лимит размера одного файла.
// Handler вызывает её от заявленного размера части multipart ДО чтения
// тела в память: оверсайз отклоняется без буферизации. Upload повторяет
// проверку от фактического размера — для оркестратора она бесплатна.
func (s *UploadService) CheckFileSize(size int64) *UploadError {
	err := s.quota.CheckFileSize(size)
	if err == nil {
		return nil
	}

	var sizeErr *SizeLimitError
	errors.As(err, &sizeErr)
	uploadsTotal.WithLabelValues("file_too_large").Inc()
	return &UploadError{
		StatusCode: http.StatusRequestEntityTooLarge,
		Code:       apierrors.CodeFileTooLarge,
		Message:    fmt.Sprintf("Файл слишком большой: максимум %d байт, получено %d", sizeErr.Max, sizeErr.Actual),
		Details: map[string]any{
			"max_file_size": sizeErr.Max,
			"file_size":     sizeErr.Actual,
		},
	}
}

// Upload выполняет полный pipeline загрузки файла.
//
// Pipeline:
//  1. Лимит размера файла (до любого обращения к БД или сети)
//  2. Агрегатная квота владельца (снимок из files)
//  3. Валидация родительской папки (если parent_id задан)
//  4. Backends по порядку до первого успеха
//  5. Вставка FileRecord
//
// Весь запрос ограничен бюджетом uploadTimeout; при отмене контекста
// оставшиеся backends не пробуются и запись не создаётся.
func (s *UploadService) Upload(ctx context.Context, params UploadParams) (*UploadResult, *UploadError) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	// 1. Лимит размера одного файла — до любого сетевого вызова
	if uploadErr := s.CheckFileSize(params.Size); uploadErr != nil {
		return nil, uploadErr
	}

	// 2. Агрегатная квота — снимок занятого места на момент запроса
	used, err := s.quota.ComputeUsage(ctx, params.OwnerID)
	if err != nil {
		uploadsTotal.WithLabelValues("usage_error").Inc()
		return nil, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Не удалось проверить занятое место. Повторите попытку.",
		}
	}

	if err := s.quota.CheckQuota(used, params.Size); err != nil {
		var quotaErr *QuotaExceededError
		errors.As(err, &quotaErr)
		uploadsTotal.WithLabelValues("quota_exceeded").Inc()
		return nil, &UploadError{
			StatusCode: http.StatusRequestEntityTooLarge,
			Code:       apierrors.CodeQuotaExceeded,
			Message: fmt.Sprintf("Лимит хранения превышен: занято %d из %d байт, файл %d байт не помещается",
				quotaErr.Used, quotaErr.Limit, quotaErr.Attempted),
			Details: map[string]any{
				"current_usage":   quotaErr.Used,
				"limit":           quotaErr.Limit,
				"file_size":       quotaErr.Attempted,
				"remaining_space": quotaErr.Remaining,
			},
		}
	}

	// 3. Родительская папка: существует, принадлежит владельцу, is_folder.
	// Все несовпадения — один и тот же ответ 404.
	if params.ParentID != nil {
		if _, err := s.fileRepo.GetFolder(ctx, *params.ParentID, params.OwnerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				uploadsTotal.WithLabelValues("parent_not_found").Inc()
				return nil, &UploadError{
					StatusCode: http.StatusNotFound,
					Code:       apierrors.CodeNotFound,
					Message:    "Родительская папка не найдена",
				}
			}
			uploadsTotal.WithLabelValues("parent_error").Inc()
			return nil, &UploadError{
				StatusCode: http.StatusInternalServerError,
				Code:       apierrors.CodeInternalError,
				Message:    "Не удалось проверить родительскую папку. Повторите попытку.",
			}
		}
	}

	// 4. Backends по порядку: одна попытка на backend, без retry
	req := backend.UploadRequest{
		Data:        params.Data,
		Filename:    generateObjectName(params.Filename),
		Folder:      folderPath(params.OwnerID, params.ParentID),
		ContentType: params.ContentType,
	}

	ref, index, exhausted := s.attemptBackends(ctx, req)
	if exhausted != nil {
		for _, attempt := range exhausted.Errors {
			s.logger.Error("Попытка backend-а не удалась",
				slog.Int("index", attempt.Index),
				slog.String("backend", attempt.Backend),
				slog.String("error", attempt.Err.Error()),
			)
		}
		uploadsTotal.WithLabelValues("backends_exhausted").Inc()
		return nil, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeBackendUnavailable,
			Message:    "Не удалось загрузить файл: все хранилища недоступны. Повторите попытку позже.",
		}
	}

	// 5. Вставка FileRecord — одна запись, после успеха backend-а
	record := &model.FileRecord{
		Name:         params.Filename,
		Path:         ref.StoragePath,
		Size:         params.Size,
		Type:         params.ContentType,
		FileURL:      ref.URL,
		ThumbnailURL: ref.ThumbnailURL,
		OwnerID:      params.OwnerID,
		ParentID:     params.ParentID,
		IsFolder:     false,
		IsStarred:    false,
		IsInTrash:    false,
	}

	saved, err := s.fileRepo.Insert(ctx, record)
	if err != nil {
		// Компенсация на backend-е не выполняется: объект остаётся без записи.
		// Лог содержит ссылку backend-а — материал для reconciliation sweep.
		s.logger.Error("Ошибка вставки записи файла: объект остался на backend-е без записи",
			slog.String("backend", s.registry[index].Name()),
			slog.String("backend_file_id", ref.FileID),
			slog.String("storage_path", ref.StoragePath),
			slog.String("owner_id", params.OwnerID),
			slog.String("error", err.Error()),
		)
		uploadsTotal.WithLabelValues("persistence_error").Inc()
		return nil, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Code:       apierrors.CodeInternalError,
			Message:    "Не удалось сохранить информацию о файле. Повторите попытку.",
		}
	}

	usedFallback := index > 0
	if usedFallback {
		fallbackUploadsTotal.Inc()
	}

	s.cache.Set(saved.ID, saved)

	// Уведомление — fire-and-forget, ответ его не ждёт
	if s.notifier != nil {
		s.notifier.UploadSucceeded(saved, usedFallback, index)
	}

	duration := time.Since(start)
	uploadsTotal.WithLabelValues("success").Inc()
	uploadDuration.Observe(duration.Seconds())
	uploadBytesTotal.Add(float64(params.Size))

	s.logger.Info("Файл загружен",
		slog.String("file_id", saved.ID),
		slog.String("filename", params.Filename),
		slog.Int64("size", params.Size),
		slog.String("owner_id", params.OwnerID),
		slog.String("backend", s.registry[index].Name()),
		slog.Bool("used_fallback", usedFallback),
		slog.Int("fallback_account", index),
		slog.Duration("duration", duration),
	)

	return &UploadResult{
		Record:          saved,
		UsedFallback:    usedFallback,
		FallbackAccount: index,
	}, nil
}

// attemptBackends перебирает registry по порядку до первого успеха.
// Возвращает (ссылка, индекс успеха, nil) или (nil, 0, ошибки всех попыток).
// При отмене контекста оставшиеся backends не пробуются.
func (s *UploadService) attemptBackends(ctx context.Context, req backend.UploadRequest) (*backend.Reference, int, *BackendExhaustedError) {
	failures := make([]BackendAttemptError, 0, len(s.registry))

	for i, uploader := range s.registry {
		// Бюджет запроса истёк или клиент отключился — дальше не пробуем
		if ctx.Err() != nil {
			failures = append(failures, BackendAttemptError{
				Index:   i,
				Backend: uploader.Name(),
				Err:     ctx.Err(),
			})
			break
		}

		ref, err := uploader.Upload(ctx, req)
		if err != nil {
			backendAttemptsTotal.WithLabelValues(uploader.Name(), "error").Inc()
			failures = append(failures, BackendAttemptError{
				Index:   i,
				Backend: uploader.Name(),
				Err:     err,
			})
			continue
		}

		backendAttemptsTotal.WithLabelValues(uploader.Name(), "success").Inc()
		return ref, i, nil
	}

	return nil, 0, &BackendExhaustedError{Errors: failures}
}

// generateObjectName строит имя объекта для backend-а: uuid + расширение
// оригинала. Имя пользователя никогда не используется — исключает коллизии
// между конкурентными загрузками.
func generateObjectName(originalFilename string) string {
	name := uuid.New().String()
	if idx := strings.LastIndex(originalFilename, "."); idx != -1 && idx < len(originalFilename)-1 {
		name += originalFilename[idx:]
	}
	return name
}

// folderPath строит детерминированный путь папки на backend-е.
func folderPath(ownerID string, parentID *string) string {
	if parentID != nil {
		return fmt.Sprintf("/filenest/%s/folders/%s", ownerID, *parentID)
	}
	return "/filenest/" + ownerID
}
