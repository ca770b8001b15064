// quota.go — QuotaGuard: проверка лимитов хранения перед загрузкой.
//
// Две независимые проверки с разными ошибками:
//   - лимит размера одного файла (CheckFileSize) — без обращения к БД,
//     выполняется первой, до любого сетевого вызова;
//   - агрегатная квота владельца (CheckQuota) — от суммы size по таблице
//     files, пересчитывается на каждый запрос, не кэшируется.
//
// Проверка квоты и итоговая вставка записи разделены вызовом backend-а,
// поэтому check-then-act не атомарен: две конкурентные загрузки одного
// владельца могут совместно превысить лимит (TOCTOU). Поведение сохранено
// намеренно — агрегат пересчитывается из источника истины на каждом
// запросе, и перерасход закрывается при следующей загрузке.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
	"github.com/bigkaa/filenest/upload-module/internal/repository"
)

// Prometheus-метрики квоты.
var quotaRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "um_quota_rejections_total",
	Help: "Количество отклонённых загрузок по причине (file_size, quota).",
}, []string{"reason"})

// QuotaGuard — проверка лимитов хранения.
type QuotaGuard struct {
	fileRepo     repository.FileRepository
	maxFileSize  int64
	storageLimit int64
	logger       *slog.Logger
}

// NewQuotaGuard создаёт QuotaGuard с настроенными лимитами.
func NewQuotaGuard(fileRepo repository.FileRepository, maxFileSize, storageLimit int64, logger *slog.Logger) *QuotaGuard {
	return &QuotaGuard{
		fileRepo:     fileRepo,
		maxFileSize:  maxFileSize,
		storageLimit: storageLimit,
		logger:       logger.With(slog.String("component", "quota_guard")),
	}
}

// MaxFileSize возвращает настроенный лимит размера файла.
func (q *QuotaGuard) MaxFileSize() int64 {
	return q.maxFileSize
}

// StorageLimit возвращает настроенный агрегатный лимит.
func (q *QuotaGuard) StorageLimit() int64 {
	return q.storageLimit
}

// ComputeUsage возвращает занятые владельцем байты из таблицы files.
// Ошибка агрегатного запроса — hard stop: вызывающий не должен
// продолжать загрузку (ErrStorageQuery).
func (q *QuotaGuard) ComputeUsage(ctx context.Context, ownerID string) (int64, error) {
	used, err := q.fileRepo.SumActiveSize(ctx, ownerID)
	if err != nil {
		q.logger.Error("Ошибка вычисления занятого места",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("%w: %w", ErrStorageQuery, err)
	}
	return used, nil
}

// CheckFileSize проверяет лимит размера одного файла.
// Не зависит от квоты и не обращается к БД.
func (q *QuotaGuard) CheckFileSize(size int64) error {
	if size > q.maxFileSize {
		quotaRejectionsTotal.WithLabelValues("file_size").Inc()
		return &SizeLimitError{Max: q.maxFileSize, Actual: size}
	}
	return nil
}

// CheckQuota проверяет, помещается ли файл в агрегатный лимит.
// usedBytes — снимок от ComputeUsage этого же запроса; Remaining в ошибке
// вычисляется от этого снимка, не от состояния после отклонения.
func (q *QuotaGuard) CheckQuota(usedBytes, size int64) error {
	if usedBytes+size > q.storageLimit {
		quotaRejectionsTotal.WithLabelValues("quota").Inc()
		return &QuotaExceededError{
			Used:      usedBytes,
			Limit:     q.storageLimit,
			Attempted: size,
			Remaining: max(0, q.storageLimit-usedBytes),
		}
	}
	return nil
}

// Snapshot возвращает снимок квоты владельца для /storage/usage.
func (q *QuotaGuard) Snapshot(ctx context.Context, ownerID string) (*model.QuotaSnapshot, error) {
	used, err := q.ComputeUsage(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &model.QuotaSnapshot{
		UsedBytes:      used,
		LimitBytes:     q.storageLimit,
		RemainingBytes: max(0, q.storageLimit-used),
	}, nil
}
