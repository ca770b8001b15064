// Пакет errors — конструкторы стандартных ошибок в формате FileNest.
// Единый формат: {"error": {"code": "...", "message": "...", "details": {...}}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате FileNest.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteErrorDetails(w, statusCode, code, message, nil)
}

// WriteErrorDetails записывает ответ ошибки с машиночитаемыми деталями.
// details — дополнительные поля контракта (лимиты, размеры), может быть nil.
func WriteErrorDetails(w http.ResponseWriter, statusCode int, code, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// FileTooLarge — 413 файл превышает лимит размера.
// Контракт требует машиночитаемые max_file_size и file_size.
func FileTooLarge(w http.ResponseWriter, message string, maxFileSize, fileSize int64) {
	WriteErrorDetails(w, http.StatusRequestEntityTooLarge, CodeFileTooLarge, message, map[string]any{
		"max_file_size": maxFileSize,
		"file_size":     fileSize,
	})
}

// QuotaExceeded — 413 превышен агрегатный лимит хранения.
// remaining вычисляется от снимка квоты ДО отклонённой загрузки.
func QuotaExceeded(w http.ResponseWriter, message string, used, limit, fileSize, remaining int64) {
	WriteErrorDetails(w, http.StatusRequestEntityTooLarge, CodeQuotaExceeded, message, map[string]any{
		"current_usage":   used,
		"limit":           limit,
		"file_size":       fileSize,
		"remaining_space": remaining,
	})
}

// BackendUnavailable — 500 все storage backends недоступны.
func BackendUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeBackendUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
