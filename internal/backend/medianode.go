// medianode.go — HTTP-клиент media node (primary storage backend).
// Контракт: multipart POST {base}/api/v1/files/upload c Authorization: Bearer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// MediaNodeClient — клиент одного media node.
// Реализует Uploader; экземпляр на каждый node из конфигурации.
type MediaNodeClient struct {
	name       string
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewMediaNodeClient создаёт клиент media node.
// name — идентификатор для логов/метрик (media-0, media-1, ...).
// baseURL — базовый URL node без trailing slash.
// key — API-ключ node (Authorization: Bearer).
func NewMediaNodeClient(name, baseURL, key string, timeout time.Duration, logger *slog.Logger) *MediaNodeClient {
	return &MediaNodeClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "media_node_client"), slog.String("node", name)),
	}
}

// Name возвращает идентификатор node.
func (c *MediaNodeClient) Name() string {
	return c.name
}

// uploadResponse — ответ media node на успешную загрузку.
type uploadResponse struct {
	FileID       string  `json:"file_id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	StoragePath  string  `json:"storage_path"`
}

// Upload выполняет одну попытку загрузки на node.
// Любой не-2xx статус — ошибка; повторы не выполняются.
func (c *MediaNodeClient) Upload(ctx context.Context, req UploadRequest) (*Reference, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Часть file с явным Content-Type (CreateFormFile зашивает octet-stream)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, req.Filename))
	partHeader.Set("Content-Type", req.ContentType)

	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("создание multipart part: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("запись данных в multipart: %w", err)
	}

	if err := writer.WriteField("folder", req.Folder); err != nil {
		return nil, fmt.Errorf("запись поля folder: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("закрытие multipart writer: %w", err)
	}

	reqURL := c.baseURL + "/api/v1/files/upload"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса upload: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("запрос upload к %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("node %s вернул статус %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("декодирование ответа %s: %w", c.name, err)
	}
	if result.URL == "" {
		return nil, fmt.Errorf("node %s вернул ответ без url", c.name)
	}

	c.logger.Debug("Объект загружен на node",
		slog.String("file_id", result.FileID),
		slog.String("storage_path", result.StoragePath),
	)

	return &Reference{
		FileID:       result.FileID,
		URL:          result.URL,
		ThumbnailURL: result.ThumbnailURL,
		StoragePath:  result.StoragePath,
	}, nil
}
