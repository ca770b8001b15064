// Пакет model — доменные модели Upload Module.
// FileRecord — маппинг таблицы files (единственное разделяемое состояние сервиса).
package model

import "time"

// FileRecord — запись файла или папки в таблице files.
// Upload Module создаёт записи при загрузке; мутации (star, trash, rename)
// выполняются другими сервисами и здесь не реализованы.
type FileRecord struct {
	// ID — UUID записи (генерируется БД при вставке)
	ID string
	// Name — оригинальное имя файла, как его загрузил пользователь
	Name string
	// Path — путь хранения на backend-е (backend-специфичный)
	Path string
	// Size — размер файла в байтах (для папок 0)
	Size int64
	// Type — MIME-тип файла
	Type string
	// FileURL — канонический URL для скачивания
	FileURL string
	// ThumbnailURL — URL миниатюры (если backend её вернул)
	ThumbnailURL *string
	// OwnerID — идентификатор владельца (sub из JWT)
	OwnerID string
	// ParentID — UUID родительской папки (nil — корень)
	ParentID *string
	// IsFolder — запись является папкой
	IsFolder bool
	// IsStarred — файл отмечен пользователем
	IsStarred bool
	// IsInTrash — файл в корзине (не учитывается в квоте)
	IsInTrash bool
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// QuotaSnapshot — мгновенный снимок использования квоты владельца.
// Вычисляется заново на каждый запрос, никогда не персистится и не кэшируется.
type QuotaSnapshot struct {
	// UsedBytes — сумма size по файлам владельца (не папки, не в корзине)
	UsedBytes int64
	// LimitBytes — настроенный агрегатный лимит
	LimitBytes int64
	// RemainingBytes — max(0, LimitBytes - UsedBytes)
	RemainingBytes int64
}
