package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
)

// fileColumns — список столбцов таблицы files для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const fileColumns = `id, name, path, size, type, file_url, thumbnail_url,
	owner_id, parent_id, is_folder, is_starred, is_in_trash, created_at, updated_at`

// ListFilters — фильтры листинга файлов владельца.
// Все поля — указатели, nil = фильтр не применяется.
type ListFilters struct {
	// ParentID — файлы внутри указанной папки (nil — без фильтра,
	// указатель на пустую строку — только корень)
	ParentID *string
	// IsFolder — только папки / только файлы
	IsFolder *bool
}

// FileRepository — интерфейс доступа к таблице files.
type FileRepository interface {
	// Insert вставляет одну запись и возвращает её с id/timestamps из БД.
	Insert(ctx context.Context, f *model.FileRecord) (*model.FileRecord, error)
	// GetByID возвращает запись по UUID.
	GetByID(ctx context.Context, fileID string) (*model.FileRecord, error)
	// GetFolder возвращает папку по UUID, только если она принадлежит владельцу
	// и является папкой. Любое несовпадение — ErrNotFound (без утечки информации
	// о существовании чужих записей).
	GetFolder(ctx context.Context, folderID, ownerID string) (*model.FileRecord, error)
	// SumActiveSize возвращает сумму size по файлам владельца:
	// не папки, не в корзине. Источник истины для квоты.
	SumActiveSize(ctx context.Context, ownerID string) (int64, error)
	// ListByOwner возвращает файлы владельца с фильтрами и пагинацией.
	// Возвращает: список, общее количество, ошибка.
	ListByOwner(ctx context.Context, ownerID string, filters ListFilters, limit, offset int) ([]*model.FileRecord, int, error)
}

// fileRepo — реализация FileRepository через pgx.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

// Insert вставляет запись файла. id, created_at и updated_at генерирует БД.
func (r *fileRepo) Insert(ctx context.Context, f *model.FileRecord) (*model.FileRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO files (name, path, size, type, file_url, thumbnail_url,
			owner_id, parent_id, is_folder, is_starred, is_in_trash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s`, fileColumns)

	row := r.db.QueryRow(ctx, query,
		f.Name, f.Path, f.Size, f.Type, f.FileURL, f.ThumbnailURL,
		f.OwnerID, f.ParentID, f.IsFolder, f.IsStarred, f.IsInTrash,
	)

	saved, err := scanFileRecord(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка вставки записи файла: %w", err)
	}
	return saved, nil
}

// GetByID возвращает запись по UUID или ErrNotFound.
func (r *fileRepo) GetByID(ctx context.Context, fileID string) (*model.FileRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, fileColumns)

	f, err := scanFileRecord(r.db.QueryRow(ctx, query, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи файла: %w", err)
	}
	return f, nil
}

// GetFolder возвращает папку владельца или ErrNotFound.
// Не найдена, чужая и не-папка неразличимы для вызывающего.
func (r *fileRepo) GetFolder(ctx context.Context, folderID, ownerID string) (*model.FileRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM files WHERE id = $1 AND owner_id = $2 AND is_folder = TRUE`,
		fileColumns,
	)

	f, err := scanFileRecord(r.db.QueryRow(ctx, query, folderID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения папки: %w", err)
	}
	return f, nil
}

// SumActiveSize возвращает занятые владельцем байты.
// Папки и файлы в корзине в квоте не учитываются.
func (r *fileRepo) SumActiveSize(ctx context.Context, ownerID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(size), 0)
		FROM files
		WHERE owner_id = $1 AND is_folder = FALSE AND is_in_trash = FALSE`

	var total int64
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта занятого места: %w", err)
	}
	return total, nil
}

// ListByOwner возвращает файлы владельца с пагинацией.
// Файлы в корзине не показываются.
func (r *fileRepo) ListByOwner(ctx context.Context, ownerID string, filters ListFilters, limit, offset int) ([]*model.FileRecord, int, error) {
	where, args := buildListWhere(ownerID, filters)
	argNum := len(args) + 1

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM files %s ORDER BY is_folder DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		fileColumns, where, argNum, argNum+1,
	)
	dataArgs := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка листинга файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.FileRecord
	for rows.Next() {
		f, scanErr := scanFileRecord(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования файла: %w", scanErr)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	// Общее количество с теми же фильтрами, без LIMIT/OFFSET
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM files %s`, where)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}

	return result, total, nil
}

// buildListWhere строит WHERE-условие и аргументы листинга.
func buildListWhere(ownerID string, filters ListFilters) (whereClause string, args []any) {
	where := "WHERE owner_id = $1 AND is_in_trash = FALSE"
	args = []any{ownerID}
	argNum := 2

	if filters.ParentID != nil {
		if *filters.ParentID == "" {
			// Корень диска владельца
			where += " AND parent_id IS NULL"
		} else {
			where += fmt.Sprintf(" AND parent_id = $%d", argNum)
			args = append(args, *filters.ParentID)
			argNum++
		}
	}

	if filters.IsFolder != nil {
		where += fmt.Sprintf(" AND is_folder = $%d", argNum)
		args = append(args, *filters.IsFolder)
	}

	return where, args
}

// scanFileRecord сканирует одну строку результата в FileRecord.
func scanFileRecord(row pgx.Row) (*model.FileRecord, error) {
	f := &model.FileRecord{}
	err := row.Scan(
		&f.ID, &f.Name, &f.Path, &f.Size, &f.Type, &f.FileURL, &f.ThumbnailURL,
		&f.OwnerID, &f.ParentID, &f.IsFolder, &f.IsStarred, &f.IsInTrash,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}
