// gcs.go — терминальный fallback: Google Cloud Storage.
// Структурно другой контракт (SDK writer вместо HTTP multipart),
// адаптированный под единую capability Uploader.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSUploader — адаптер GCS bucket под Uploader.
// Credentials берутся из окружения (Application Default Credentials).
type GCSUploader struct {
	bucket    string
	publicURL string
	client    *storage.Client
	logger    *slog.Logger
}

// NewGCSUploader создаёт адаптер GCS.
// publicURL — префикс публичных URL объектов (https://storage.googleapis.com).
func NewGCSUploader(ctx context.Context, bucket, publicURL string, logger *slog.Logger) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("создание GCS-клиента: %w", err)
	}

	return &GCSUploader{
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		client:    client,
		logger:    logger.With(slog.String("component", "gcs_uploader"), slog.String("bucket", bucket)),
	}, nil
}

// Name возвращает идентификатор backend-а.
func (g *GCSUploader) Name() string {
	return "gcs:" + g.bucket
}

// Upload записывает объект в bucket через SDK writer.
// Имя объекта — folder/filename без ведущего slash (GCS не использует
// абсолютные пути).
func (g *GCSUploader) Upload(ctx context.Context, req UploadRequest) (*Reference, error) {
	objectName := strings.TrimPrefix(req.Folder, "/") + "/" + req.Filename

	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = req.ContentType

	if _, err := w.Write(req.Data); err != nil {
		// Close обязателен и после ошибки записи, иначе объект останется в upload-сессии
		_ = w.Close()
		return nil, fmt.Errorf("запись объекта %s в GCS: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("завершение записи объекта %s в GCS: %w", objectName, err)
	}

	g.logger.Debug("Объект записан в GCS", slog.String("object", objectName))

	return &Reference{
		FileID:       objectName,
		URL:          fmt.Sprintf("%s/%s/%s", g.publicURL, g.bucket, objectName),
		ThumbnailURL: nil, // GCS не создаёт миниатюры
		StoragePath:  objectName,
	}, nil
}

// Close освобождает ресурсы GCS-клиента.
func (g *GCSUploader) Close() error {
	return g.client.Close()
}
