// files.go — HTTP handlers файловых endpoints Upload Module.
// Upload, Get metadata, List, Storage usage.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/bigkaa/filenest/upload-module/internal/api/errors"
	"github.com/bigkaa/filenest/upload-module/internal/api/generated"
	"github.com/bigkaa/filenest/upload-module/internal/api/middleware"
	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
	"github.com/bigkaa/filenest/upload-module/internal/repository"
	"github.com/bigkaa/filenest/upload-module/internal/service"
)

// maxFormOverhead — запас на поля формы и multipart-границы сверх
// лимита размера файла при ограничении тела запроса.
const maxFormOverhead = 1 << 20

// handleUploadFile — реализация POST /api/v1/files/upload.
// Multipart form: file (обязательно), user_id (обязательно, должен совпадать
// с sub JWT), parent_id (опционально, UUID папки).
//
// Оверсайз отклоняется до буферизации: сначала по Content-Length запроса,
// затем по заявленному размеру части file — тело читается в память только
// после обеих проверок.
func (h *APIHandler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	// Извлекаем subject из JWT контекста
	subject := middleware.SubjectFromContext(r.Context())

	// Запрос заведомо не помещается в лимит — отклоняем без чтения тела
	maxBody := h.uploadService.MaxFileSize() + maxFormOverhead
	if r.ContentLength > maxBody {
		apierrors.FileTooLarge(w,
			fmt.Sprintf("Файл слишком большой: максимум %d байт", h.uploadService.MaxFileSize()),
			h.uploadService.MaxFileSize(), r.ContentLength)
		return
	}
	// Страховка для chunked-запросов без Content-Length
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	// Парсим multipart form (буфер в памяти, остальное — во временные файлы)
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32 MB buffer
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w,
				fmt.Sprintf("Файл слишком большой: максимум %d байт", h.uploadService.MaxFileSize()),
				h.uploadService.MaxFileSize(), r.ContentLength)
			return
		}
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга multipart: %s", err.Error()))
		return
	}

	// Извлекаем файл
	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	// user_id обязан совпадать с владельцем токена:
	// нельзя загрузить файл в чужое хранилище
	userID := r.FormValue("user_id")
	if userID == "" {
		apierrors.ValidationError(w, "Поле 'user_id' обязательно")
		return
	}
	if userID != subject {
		apierrors.Unauthorized(w, "user_id не совпадает с владельцем токена")
		return
	}

	// parent_id — опциональный UUID родительской папки
	var parentID *string
	if pid := r.FormValue("parent_id"); pid != "" {
		if _, parseErr := uuid.Parse(pid); parseErr != nil {
			apierrors.ValidationError(w, "Поле 'parent_id' должно быть валидным UUID")
			return
		}
		parentID = &pid
	}

	// Определяем Content-Type
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Лимит размера — по заявленному размеру части, до чтения тела в память
	if uploadErr := h.uploadService.CheckFileSize(header.Size); uploadErr != nil {
		apierrors.WriteErrorDetails(w, uploadErr.StatusCode, uploadErr.Code, uploadErr.Message, uploadErr.Details)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Ошибка чтения тела файла",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Не удалось прочитать файл")
		return
	}

	// Вызываем оркестратор загрузки
	result, uploadErr := h.uploadService.Upload(r.Context(), service.UploadParams{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		OwnerID:     userID,
		ParentID:    parentID,
	})
	if uploadErr != nil {
		apierrors.WriteErrorDetails(w, uploadErr.StatusCode, uploadErr.Code, uploadErr.Message, uploadErr.Details)
		return
	}

	resp := generated.UploadResponse{
		File:            recordToAPIMetadata(result.Record),
		UsedFallback:    result.UsedFallback,
		FallbackAccount: result.FallbackAccount,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetFileMetadata — реализация GET /api/v1/files/{file_id}.
// Чужой файл неотличим от несуществующего (404).
func (h *APIHandler) handleGetFileMetadata(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	subject := middleware.SubjectFromContext(r.Context())

	record, err := h.fileService.GetFileMetadata(r.Context(), fileID.String(), subject)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		h.logger.Error("Ошибка получения метаданных файла",
			slog.String("file_id", fileID.String()),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка при получении метаданных файла")
		return
	}

	writeJSON(w, http.StatusOK, recordToAPIMetadata(record))
}

// handleListFiles — реализация GET /api/v1/files.
// Листинг файлов владельца токена с фильтрами и пагинацией.
func (h *APIHandler) handleListFiles(w http.ResponseWriter, r *http.Request, params generated.ListFilesParams) {
	subject := middleware.SubjectFromContext(r.Context())

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	filters := repository.ListFilters{
		ParentID: params.ParentId,
		IsFolder: params.IsFolder,
	}

	result, err := h.fileService.List(r.Context(), subject, filters, limit, offset)
	if err != nil {
		h.logger.Error("Ошибка листинга файлов",
			slog.String("owner_id", subject),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка при листинге файлов")
		return
	}

	items := make([]generated.FileMetadata, 0, len(result.Items))
	for _, record := range result.Items {
		items = append(items, recordToAPIMetadata(record))
	}

	resp := generated.FileListResponse{
		Items:   items,
		Total:   result.Total,
		Limit:   result.Limit,
		Offset:  result.Offset,
		HasMore: result.HasMore,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetStorageUsage — реализация GET /api/v1/storage/usage.
func (h *APIHandler) handleGetStorageUsage(w http.ResponseWriter, r *http.Request) {
	subject := middleware.SubjectFromContext(r.Context())

	snapshot, err := h.fileService.Usage(r.Context(), subject)
	if err != nil {
		h.logger.Error("Ошибка получения занятого места",
			slog.String("owner_id", subject),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка при подсчёте занятого места")
		return
	}

	resp := generated.StorageUsage{
		UsedBytes:      snapshot.UsedBytes,
		LimitBytes:     snapshot.LimitBytes,
		RemainingBytes: snapshot.RemainingBytes,
	}

	writeJSON(w, http.StatusOK, resp)
}

// recordToAPIMetadata конвертирует domain модель в API-тип FileMetadata.
func recordToAPIMetadata(f *model.FileRecord) generated.FileMetadata {
	m := generated.FileMetadata{
		Id:           parseUUID(f.ID),
		Name:         f.Name,
		Size:         f.Size,
		Type:         f.Type,
		FileUrl:      f.FileURL,
		ThumbnailUrl: f.ThumbnailURL,
		OwnerId:      f.OwnerID,
		IsFolder:     f.IsFolder,
		IsStarred:    f.IsStarred,
		IsInTrash:    f.IsInTrash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
	if f.ParentID != nil {
		pid := parseUUID(*f.ParentID)
		m.ParentId = &pid
	}
	return m
}

// parseUUID конвертирует строковый UUID в openapi-тип.
// Невалидный UUID из БД невозможен (тип столбца uuid) — возвращается нулевой.
func parseUUID(s string) openapi_types.UUID {
	u, _ := uuid.Parse(s)
	return u
}
