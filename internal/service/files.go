// files.go — сервис чтения метаданных и занятого места.
// Координирует repository, LRU cache и QuotaGuard.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
	"github.com/bigkaa/filenest/upload-module/internal/repository"
)

// ListResult — результат листинга с пагинацией.
type ListResult struct {
	// Items — файлы владельца
	Items []*model.FileRecord
	// Total — общее количество с учётом фильтров
	Total int
	// Limit — запрошенный лимит
	Limit int
	// Offset — текущее смещение
	Offset int
	// HasMore — есть ли ещё результаты
	HasMore bool
}

// FileService — сервис метаданных файлов.
type FileService struct {
	fileRepo repository.FileRepository
	cache    *CacheService
	quota    *QuotaGuard
	logger   *slog.Logger
}

// NewFileService создаёт сервис метаданных.
func NewFileService(
	fileRepo repository.FileRepository,
	cache *CacheService,
	quota *QuotaGuard,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		cache:    cache,
		quota:    quota,
		logger:   logger.With(slog.String("component", "file_service")),
	}
}

// GetFileMetadata возвращает метаданные файла владельца.
// Сначала проверяет LRU-кэш, при промахе — запрос к PostgreSQL, результат
// кэшируется. Чужой файл неотличим от несуществующего: в обоих случаях
// ErrNotFound.
func (s *FileService) GetFileMetadata(ctx context.Context, fileID, ownerID string) (*model.FileRecord, error) {
	// Проверяем кэш; принадлежность проверяем и на hit
	if record, ok := s.cache.Get(fileID); ok {
		s.logger.Debug("Кэш hit для файла", slog.String("file_id", fileID))
		if record.OwnerID != ownerID {
			return nil, ErrNotFound
		}
		return record, nil
	}

	// Cache miss — запрос к БД
	record, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение метаданных файла: %w", err)
	}

	if record.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	// Сохраняем в кэш
	s.cache.Set(fileID, record)

	return record, nil
}

// List возвращает файлы владельца с фильтрами и пагинацией.
func (s *FileService) List(ctx context.Context, ownerID string, filters repository.ListFilters, limit, offset int) (*ListResult, error) {
	items, total, err := s.fileRepo.ListByOwner(ctx, ownerID, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("листинг файлов: %w", err)
	}

	s.logger.Debug("Листинг выполнен",
		slog.String("owner_id", ownerID),
		slog.Int("total", total),
		slog.Int("returned", len(items)),
	)

	return &ListResult{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(items) < total,
	}, nil
}

// Usage возвращает снимок занятого места владельца.
func (s *FileService) Usage(ctx context.Context, ownerID string) (*model.QuotaSnapshot, error) {
	snapshot, err := s.quota.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("снимок занятого места: %w", err)
	}
	return snapshot, nil
}
