package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestMediaNodeClient_Upload проверяет успешную загрузку:
// multipart запрос, Bearer-ключ, декодирование ответа.
func TestMediaNodeClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("метод = %s, ожидался POST", r.Method)
		}
		if r.URL.Path != "/api/v1/files/upload" {
			t.Errorf("path = %s, ожидался /api/v1/files/upload", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-key" {
			t.Errorf("Authorization = %q, ожидался Bearer secret-key", got)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("парсинг multipart: %v", err)
		}
		if got := r.FormValue("folder"); got != "/filenest/user-1" {
			t.Errorf("folder = %q, ожидался /filenest/user-1", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("чтение поля file: %v", err)
		}
		defer file.Close()
		if header.Filename != "abc.png" {
			t.Errorf("filename = %q, ожидался abc.png", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type части = %q, ожидался image/png", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "png-bytes" {
			t.Errorf("содержимое = %q, ожидалось png-bytes", string(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"file_id":      "node-file-1",
			"url":          "https://cdn.example.com/node-file-1",
			"storage_path": "/filenest/user-1/abc.png",
		})
	}))
	defer srv.Close()

	client := NewMediaNodeClient("media-node-0", srv.URL, "secret-key", 5*time.Second, slog.Default())

	ref, err := client.Upload(context.Background(), UploadRequest{
		Data:        []byte("png-bytes"),
		Filename:    "abc.png",
		Folder:      "/filenest/user-1",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Upload ошибка: %v", err)
	}

	if ref.FileID != "node-file-1" {
		t.Errorf("FileID = %q, ожидался node-file-1", ref.FileID)
	}
	if ref.URL != "https://cdn.example.com/node-file-1" {
		t.Errorf("URL = %q, ожидался https://cdn.example.com/node-file-1", ref.URL)
	}
	if ref.StoragePath != "/filenest/user-1/abc.png" {
		t.Errorf("StoragePath = %q, ожидался /filenest/user-1/abc.png", ref.StoragePath)
	}
	if ref.ThumbnailURL != nil {
		t.Errorf("ThumbnailURL = %v, ожидался nil", *ref.ThumbnailURL)
	}
}

// TestMediaNodeClient_Upload_Non2xx проверяет, что не-2xx статус — ошибка.
func TestMediaNodeClient_Upload_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"disk full"}`, http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	client := NewMediaNodeClient("media-node-0", srv.URL, "key", 5*time.Second, slog.Default())

	_, err := client.Upload(context.Background(), UploadRequest{
		Data:     []byte("x"),
		Filename: "x.bin",
		Folder:   "/filenest/user-1",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка при статусе 507")
	}
}

// TestMediaNodeClient_Upload_BadResponse проверяет ошибку при ответе без url.
func TestMediaNodeClient_Upload_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"file_id": "x"}`))
	}))
	defer srv.Close()

	client := NewMediaNodeClient("media-node-0", srv.URL, "key", 5*time.Second, slog.Default())

	_, err := client.Upload(context.Background(), UploadRequest{
		Data:     []byte("x"),
		Filename: "x.bin",
		Folder:   "/filenest/user-1",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка при ответе без url")
	}
}

// TestMediaNodeClient_Upload_ContextCancelled проверяет прерывание по контексту.
func TestMediaNodeClient_Upload_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewMediaNodeClient("media-node-0", srv.URL, "key", 5*time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Upload(ctx, UploadRequest{
		Data:     []byte("x"),
		Filename: "x.bin",
		Folder:   "/filenest/user-1",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка при отменённом контексте")
	}
}
