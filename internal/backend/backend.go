// Пакет backend — storage backends Upload Module.
// Единая capability Uploader: принять байты + метаданные, вернуть durable
// ссылку. Primary backends — media nodes с одинаковым HTTP-контрактом;
// терминальный fallback (GCS) структурно другой и обёрнут в адаптер,
// чтобы цикл failover оставался единообразным.
package backend

import "context"

// UploadRequest — запрос загрузки, одинаковый для всех backends.
type UploadRequest struct {
	// Data — содержимое файла
	Data []byte
	// Filename — сгенерированное имя объекта (uuid + расширение).
	// Никогда не имя, заданное пользователем: исключает коллизии
	// между конкурентными загрузками.
	Filename string
	// Folder — детерминированный путь папки (от owner_id и parent_id)
	Folder string
	// ContentType — MIME-тип файла
	ContentType string
}

// Reference — durable ссылка на загруженный объект.
type Reference struct {
	// FileID — идентификатор объекта на backend-е
	FileID string `json:"file_id"`
	// URL — канонический URL для скачивания
	URL string `json:"url"`
	// ThumbnailURL — URL миниатюры (nil, если backend её не создаёт)
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	// StoragePath — путь хранения на backend-е
	StoragePath string `json:"storage_path"`
}

// Uploader — единая capability storage backend-а.
// Ровно одна попытка на запрос; retry и failover — забота вызывающего.
type Uploader interface {
	// Name возвращает идентификатор backend-а для логов и метрик.
	Name() string
	// Upload загружает объект и возвращает ссылку на него.
	Upload(ctx context.Context, req UploadRequest) (*Reference, error)
}

// Registry — упорядоченный список backends. Позиция в списке — единственный
// критерий предпочтения: первый — основной, последний — терминальный fallback.
type Registry []Uploader
