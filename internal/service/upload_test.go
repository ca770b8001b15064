package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	apierrors "github.com/bigkaa/filenest/upload-module/internal/api/errors"
	"github.com/bigkaa/filenest/upload-module/internal/backend"
	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
	"github.com/bigkaa/filenest/upload-module/internal/repository"
)

// --- Mock repository ---

// mockFileRepo — мок FileRepository для unit-тестов.
type mockFileRepo struct {
	insertFn        func(ctx context.Context, f *model.FileRecord) (*model.FileRecord, error)
	getByIDFn       func(ctx context.Context, fileID string) (*model.FileRecord, error)
	getFolderFn     func(ctx context.Context, folderID, ownerID string) (*model.FileRecord, error)
	sumActiveSizeFn func(ctx context.Context, ownerID string) (int64, error)
	listByOwnerFn   func(ctx context.Context, ownerID string, filters repository.ListFilters, limit, offset int) ([]*model.FileRecord, int, error)
	insertCalls     int
}

func (m *mockFileRepo) Insert(ctx context.Context, f *model.FileRecord) (*model.FileRecord, error) {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, f)
	}
	saved := *f
	saved.ID = "generated-uuid"
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	return &saved, nil
}

func (m *mockFileRepo) GetByID(ctx context.Context, fileID string) (*model.FileRecord, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, fileID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) GetFolder(ctx context.Context, folderID, ownerID string) (*model.FileRecord, error) {
	if m.getFolderFn != nil {
		return m.getFolderFn(ctx, folderID, ownerID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) SumActiveSize(ctx context.Context, ownerID string) (int64, error) {
	if m.sumActiveSizeFn != nil {
		return m.sumActiveSizeFn(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockFileRepo) ListByOwner(ctx context.Context, ownerID string, filters repository.ListFilters, limit, offset int) ([]*model.FileRecord, int, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID, filters, limit, offset)
	}
	return nil, 0, nil
}

// --- Mock backend ---

// mockUploader — мок backend.Uploader с подсчётом вызовов.
type mockUploader struct {
	name     string
	calls    int
	uploadFn func(ctx context.Context, req backend.UploadRequest) (*backend.Reference, error)
}

func (m *mockUploader) Name() string { return m.name }

func (m *mockUploader) Upload(ctx context.Context, req backend.UploadRequest) (*backend.Reference, error) {
	m.calls++
	if m.uploadFn != nil {
		return m.uploadFn(ctx, req)
	}
	return &backend.Reference{
		FileID:      "backend-file-id",
		URL:         "https://storage.example.com/" + req.Filename,
		StoragePath: req.Folder + "/" + req.Filename,
	}, nil
}

// failingUploader возвращает мок, всегда завершающийся ошибкой.
func failingUploader(name string) *mockUploader {
	return &mockUploader{
		name: name,
		uploadFn: func(_ context.Context, _ backend.UploadRequest) (*backend.Reference, error) {
			return nil, errors.New("backend недоступен")
		},
	}
}

// newTestUploadService собирает UploadService с указанными backends и репозиторием.
func newTestUploadService(repo *mockFileRepo, registry backend.Registry, maxFileSize, storageLimit int64) *UploadService {
	quota := NewQuotaGuard(repo, maxFileSize, storageLimit, slog.Default())
	cache := NewCacheService(100, 5*time.Minute)
	return NewUploadService(quota, registry, repo, cache, nil, 30*time.Second, slog.Default())
}

// --- Тесты UploadService ---

// TestUploadService_Upload_FirstBackend проверяет успешную загрузку
// на первый backend: used_fallback=false, fallback_account=0.
func TestUploadService_Upload_FirstBackend(t *testing.T) {
	repo := &mockFileRepo{}
	primary := &mockUploader{name: "media-node-0"}
	svc := newTestUploadService(repo, backend.Registry{primary}, 100<<20, 1<<30)

	result, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:        []byte("hello"),
		Filename:    "hello.txt",
		ContentType: "text/plain",
		Size:        5,
		OwnerID:     "user-1",
	})
	if uploadErr != nil {
		t.Fatalf("Upload ошибка: %v", uploadErr)
	}

	if result.UsedFallback {
		t.Error("UsedFallback = true, ожидался false")
	}
	if result.FallbackAccount != 0 {
		t.Errorf("FallbackAccount = %d, ожидался 0", result.FallbackAccount)
	}
	if primary.calls != 1 {
		t.Errorf("primary.calls = %d, ожидался 1", primary.calls)
	}
	if repo.insertCalls != 1 {
		t.Errorf("Insert вызван %d раз, ожидался 1", repo.insertCalls)
	}
}

// TestUploadService_Upload_Failover проверяет сценарий с тремя backends:
// первые два падают, третий принимает файл — used_fallback=true,
// fallback_account=2, ровно одна попытка на backend.
func TestUploadService_Upload_Failover(t *testing.T) {
	repo := &mockFileRepo{}
	first := failingUploader("media-node-0")
	second := failingUploader("media-node-1")
	third := &mockUploader{name: "gcs:fallback"}
	svc := newTestUploadService(repo, backend.Registry{first, second, third}, 100<<20, 1<<30)

	result, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:        []byte("data"),
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        4,
		OwnerID:     "user-1",
	})
	if uploadErr != nil {
		t.Fatalf("Upload ошибка: %v", uploadErr)
	}

	if !result.UsedFallback {
		t.Error("UsedFallback = false, ожидался true")
	}
	if result.FallbackAccount != 2 {
		t.Errorf("FallbackAccount = %d, ожидался 2", result.FallbackAccount)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, ожидался ровно 1 на backend",
			first.calls, second.calls, third.calls)
	}
}

// TestUploadService_Upload_AllBackendsFail проверяет исчерпание backends:
// 500 BACKEND_UNAVAILABLE, запись не создаётся.
func TestUploadService_Upload_AllBackendsFail(t *testing.T) {
	repo := &mockFileRepo{}
	first := failingUploader("media-node-0")
	second := failingUploader("media-node-1")
	svc := newTestUploadService(repo, backend.Registry{first, second}, 100<<20, 1<<30)

	_, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:     []byte("data"),
		Filename: "doomed.txt",
		Size:     4,
		OwnerID:  "user-1",
	})
	if uploadErr == nil {
		t.Fatal("ожидалась ошибка при исчерпании backends")
	}

	if uploadErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, ожидался 500", uploadErr.StatusCode)
	}
	if uploadErr.Code != apierrors.CodeBackendUnavailable {
		t.Errorf("Code = %q, ожидался %q", uploadErr.Code, apierrors.CodeBackendUnavailable)
	}
	if repo.insertCalls != 0 {
		t.Errorf("Insert вызван %d раз, ожидался 0 (все backends упали)", repo.insertCalls)
	}
}

// TestUploadService_Upload_FileTooLarge проверяет отклонение по лимиту
// размера до обращения к backends и БД.
func TestUploadService_Upload_FileTooLarge(t *testing.T) {
	usageCalls := 0
	repo := &mockFileRepo{
		sumActiveSizeFn: func(_ context.Context, _ string) (int64, error) {
			usageCalls++
			return 0, nil
		},
	}
	primary := &mockUploader{name: "media-node-0"}
	svc := newTestUploadService(repo, backend.Registry{primary}, 10, 1<<30)

	_, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:     []byte("eleven bytes"),
		Filename: "big.bin",
		Size:     11,
		OwnerID:  "user-1",
	})
	if uploadErr == nil {
		t.Fatal("ожидалась ошибка FILE_TOO_LARGE")
	}

	if uploadErr.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("StatusCode = %d, ожидался 413", uploadErr.StatusCode)
	}
	if uploadErr.Code != apierrors.CodeFileTooLarge {
		t.Errorf("Code = %q, ожидался %q", uploadErr.Code, apierrors.CodeFileTooLarge)
	}
	if primary.calls != 0 {
		t.Errorf("primary.calls = %d, ожидался 0 (отклонение до backends)", primary.calls)
	}
	if usageCalls != 0 {
		t.Errorf("SumActiveSize вызван %d раз, ожидался 0 (лимит размера проверяется первым)", usageCalls)
	}
}

// TestUploadService_Upload_QuotaExceeded проверяет отклонение по квоте:
// лимит 150 MB, занято 100 MB, файл 40 MB проходит, затем 20 MB — нет.
func TestUploadService_Upload_QuotaExceeded(t *testing.T) {
	const mb = int64(1 << 20)
	used := 100 * mb
	repo := &mockFileRepo{
		sumActiveSizeFn: func(_ context.Context, _ string) (int64, error) {
			return used, nil
		},
	}
	primary := &mockUploader{name: "media-node-0"}
	svc := newTestUploadService(repo, backend.Registry{primary}, 100*mb, 150*mb)

	// Файл A: 40 MB — помещается (100+40 <= 150)
	_, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:     []byte("A"),
		Filename: "a.bin",
		Size:     40 * mb,
		OwnerID:  "user-1",
	})
	if uploadErr != nil {
		t.Fatalf("Upload файла A ошибка: %v", uploadErr)
	}

	// Файл B: 20 MB при занятых 140 MB — не помещается (140+20 > 150)
	used = 140 * mb
	_, uploadErr = svc.Upload(context.Background(), UploadParams{
		Data:     []byte("B"),
		Filename: "b.bin",
		Size:     20 * mb,
		OwnerID:  "user-1",
	})
	if uploadErr == nil {
		t.Fatal("ожидалась ошибка QUOTA_EXCEEDED для файла B")
	}

	if uploadErr.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("StatusCode = %d, ожидался 413", uploadErr.StatusCode)
	}
	if uploadErr.Code != apierrors.CodeQuotaExceeded {
		t.Errorf("Code = %q, ожидался %q", uploadErr.Code, apierrors.CodeQuotaExceeded)
	}
	if remaining, ok := uploadErr.Details["remaining_space"].(int64); !ok || remaining != 10*mb {
		t.Errorf("remaining_space = %v, ожидался %d", uploadErr.Details["remaining_space"], 10*mb)
	}
	if primary.calls != 1 {
		t.Errorf("primary.calls = %d, ожидался 1 (только файл A)", primary.calls)
	}
}

// TestUploadService_Upload_ParentNotFound проверяет 404 при отсутствии
// родительской папки.
func TestUploadService_Upload_ParentNotFound(t *testing.T) {
	repo := &mockFileRepo{
		getFolderFn: func(_ context.Context, _, _ string) (*model.FileRecord, error) {
			return nil, repository.ErrNotFound
		},
	}
	primary := &mockUploader{name: "media-node-0"}
	svc := newTestUploadService(repo, backend.Registry{primary}, 100<<20, 1<<30)

	parentID := "11111111-1111-1111-1111-111111111111"
	_, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:     []byte("data"),
		Filename: "orphan.txt",
		Size:     4,
		OwnerID:  "user-1",
		ParentID: &parentID,
	})
	if uploadErr == nil {
		t.Fatal("ожидалась ошибка NOT_FOUND")
	}

	if uploadErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, ожидался 404", uploadErr.StatusCode)
	}
	if primary.calls != 0 {
		t.Errorf("primary.calls = %d, ожидался 0 (валидация до backends)", primary.calls)
	}
}

// TestUploadService_Upload_InsertError проверяет 500 при ошибке вставки:
// объект уже на backend-е, запись не создана.
func TestUploadService_Upload_InsertError(t *testing.T) {
	repo := &mockFileRepo{
		insertFn: func(_ context.Context, _ *model.FileRecord) (*model.FileRecord, error) {
			return nil, errors.New("соединение с БД потеряно")
		},
	}
	primary := &mockUploader{name: "media-node-0"}
	svc := newTestUploadService(repo, backend.Registry{primary}, 100<<20, 1<<30)

	_, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:     []byte("data"),
		Filename: "lost.txt",
		Size:     4,
		OwnerID:  "user-1",
	})
	if uploadErr == nil {
		t.Fatal("ожидалась ошибка INTERNAL_ERROR")
	}

	if uploadErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, ожидался 500", uploadErr.StatusCode)
	}
	if uploadErr.Code != apierrors.CodeInternalError {
		t.Errorf("Code = %q, ожидался %q", uploadErr.Code, apierrors.CodeInternalError)
	}
	if primary.calls != 1 {
		t.Errorf("primary.calls = %d, ожидался 1", primary.calls)
	}
}

// TestUploadService_Upload_RecordFields проверяет, что в записи сохраняются
// оригинальное имя и точный размер, а путь приходит от backend-а.
func TestUploadService_Upload_RecordFields(t *testing.T) {
	var inserted *model.FileRecord
	repo := &mockFileRepo{
		insertFn: func(_ context.Context, f *model.FileRecord) (*model.FileRecord, error) {
			inserted = f
			saved := *f
			saved.ID = "new-id"
			return &saved, nil
		},
	}
	primary := &mockUploader{name: "media-node-0"}
	svc := newTestUploadService(repo, backend.Registry{primary}, 100<<20, 1<<30)

	result, uploadErr := svc.Upload(context.Background(), UploadParams{
		Data:        []byte("0123456789"),
		Filename:    "отчёт.pdf",
		ContentType: "application/pdf",
		Size:        10,
		OwnerID:     "user-1",
	})
	if uploadErr != nil {
		t.Fatalf("Upload ошибка: %v", uploadErr)
	}

	if inserted.Name != "отчёт.pdf" {
		t.Errorf("Name = %q, ожидалось оригинальное имя", inserted.Name)
	}
	if inserted.Size != 10 {
		t.Errorf("Size = %d, ожидался 10", inserted.Size)
	}
	if inserted.Type != "application/pdf" {
		t.Errorf("Type = %q, ожидался application/pdf", inserted.Type)
	}
	if inserted.IsFolder {
		t.Error("IsFolder = true, ожидался false")
	}
	if !strings.HasPrefix(inserted.Path, "/filenest/user-1/") {
		t.Errorf("Path = %q, ожидался префикс /filenest/user-1/", inserted.Path)
	}
	if result.Record.ID != "new-id" {
		t.Errorf("Record.ID = %q, ожидался new-id", result.Record.ID)
	}
}

// TestGenerateObjectName проверяет имя объекта: uuid + расширение оригинала.
func TestGenerateObjectName(t *testing.T) {
	tests := []struct {
		original string
		wantExt  string
	}{
		{"photo.jpg", ".jpg"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"trailing.", ""},
		{".hidden", ".hidden"},
	}

	for _, tt := range tests {
		name := generateObjectName(tt.original)
		if tt.wantExt == "" {
			if strings.Contains(name, ".") {
				t.Errorf("generateObjectName(%q) = %q, расширение не ожидалось", tt.original, name)
			}
			continue
		}
		if !strings.HasSuffix(name, tt.wantExt) {
			t.Errorf("generateObjectName(%q) = %q, ожидался суффикс %q", tt.original, name, tt.wantExt)
		}
		if strings.Contains(name, strings.TrimSuffix(tt.original, tt.wantExt)) {
			t.Errorf("generateObjectName(%q) = %q, оригинальное имя не должно попадать в объект", tt.original, name)
		}
	}

	// Два вызова для одного имени дают разные объекты
	if generateObjectName("same.txt") == generateObjectName("same.txt") {
		t.Error("имена объектов для одинаковых файлов обязаны различаться")
	}
}

// TestFolderPath проверяет детерминированный путь папки на backend-е.
func TestFolderPath(t *testing.T) {
	if got := folderPath("user-1", nil); got != "/filenest/user-1" {
		t.Errorf("folderPath = %q, ожидался /filenest/user-1", got)
	}

	parent := "22222222-2222-2222-2222-222222222222"
	want := "/filenest/user-1/folders/" + parent
	if got := folderPath("user-1", &parent); got != want {
		t.Errorf("folderPath = %q, ожидался %q", got, want)
	}
}
