// Пакет notifier — fire-and-forget webhook-уведомления об успешных загрузках.
//
// Уведомление отправляется в фоне и никогда не влияет на ответ клиенту:
// ошибки доставки логируются на WARN и не ретраятся. Без webhook-библиотеки:
// один POST с таймаутом, стандартного net/http достаточно.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
)

// uploadEvent — тело webhook-уведомления.
type uploadEvent struct {
	Event           string    `json:"event"`
	FileID          string    `json:"file_id"`
	Name            string    `json:"name"`
	Size            int64     `json:"size"`
	Type            string    `json:"type"`
	OwnerID         string    `json:"owner_id"`
	UsedFallback    bool      `json:"used_fallback"`
	FallbackAccount int       `json:"fallback_account"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// WebhookNotifier отправляет уведомления о загрузках на внешний URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт webhook-уведомитель.
// timeout — бюджет одной доставки (отдельный от бюджета запроса загрузки).
func New(url string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "notifier")),
	}
}

// UploadSucceeded отправляет уведомление об успешной загрузке.
// Выполняется в отдельной goroutine с собственным контекстом:
// отмена HTTP-запроса загрузки доставку не прерывает.
func (n *WebhookNotifier) UploadSucceeded(record *model.FileRecord, usedFallback bool, fallbackAccount int) {
	event := uploadEvent{
		Event:           "file.uploaded",
		FileID:          record.ID,
		Name:            record.Name,
		Size:            record.Size,
		Type:            record.Type,
		OwnerID:         record.OwnerID,
		UsedFallback:    usedFallback,
		FallbackAccount: fallbackAccount,
		UploadedAt:      record.CreatedAt,
	}

	go func() {
		if err := n.deliver(event); err != nil {
			n.logger.Warn("Не удалось доставить уведомление о загрузке",
				slog.String("file_id", event.FileID),
				slog.String("url", n.url),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// deliver выполняет один POST без ретраев.
func (n *WebhookNotifier) deliver(event uploadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("сериализация уведомления: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("отправка уведомления: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", resp.StatusCode)
	}
	return nil
}
