// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет health и бизнес-обработчики.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/filenest/upload-module/internal/api/generated"
	"github.com/bigkaa/filenest/upload-module/internal/service"
)

// APIHandler — основной обработчик API Upload Module.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	uploadService *service.UploadService
	fileService   *service.FileService
	health        *HealthHandler
	logger        *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	uploadService *service.UploadService,
	fileService *service.FileService,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		uploadService: uploadService,
		fileService:   fileService,
		health:        health,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Бизнес-обработчики (files.go) ---

// UploadFile — загрузка файла.
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	h.handleUploadFile(w, r)
}

// GetFileMetadata — метаданные файла.
func (h *APIHandler) GetFileMetadata(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	h.handleGetFileMetadata(w, r, fileID)
}

// ListFiles — листинг файлов владельца.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request, params generated.ListFilesParams) {
	h.handleListFiles(w, r, params)
}

// GetStorageUsage — занятое место владельца.
func (h *APIHandler) GetStorageUsage(w http.ResponseWriter, r *http.Request) {
	h.handleGetStorageUsage(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// paginationDefaults нормализует параметры пагинации.
// Возвращает корректные limit и offset.
func paginationDefaults(limit, offset *int) (limitVal, offsetVal int) {
	l := 100
	o := 0

	if limit != nil {
		l = *limit
		if l < 1 {
			l = 1
		}
		if l > 1000 {
			l = 1000
		}
	}

	if offset != nil {
		o = *offset
		if o < 0 {
			o = 0
		}
	}

	return l, o
}
