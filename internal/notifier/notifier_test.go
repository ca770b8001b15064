package notifier

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
)

func testRecord() *model.FileRecord {
	return &model.FileRecord{
		ID:        "file-123",
		Name:      "отчёт.pdf",
		Size:      2048,
		Type:      "application/pdf",
		OwnerID:   "user-1",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDeliver(t *testing.T) {
	var requests atomic.Int32
	var received uploadEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("Метод = %s, ожидался POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, ожидался application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Ошибка декодирования тела: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := New(server.URL, 5*time.Second, slog.Default())

	record := testRecord()
	event := uploadEvent{
		Event:           "file.uploaded",
		FileID:          record.ID,
		Name:            record.Name,
		Size:            record.Size,
		Type:            record.Type,
		OwnerID:         record.OwnerID,
		UsedFallback:    true,
		FallbackAccount: 2,
		UploadedAt:      record.CreatedAt,
	}

	if err := n.deliver(event); err != nil {
		t.Fatalf("deliver() вернул ошибку: %v", err)
	}

	// Ровно один POST, без ретраев
	if got := requests.Load(); got != 1 {
		t.Errorf("Запросов = %d, ожидался 1", got)
	}
	if received.Event != "file.uploaded" {
		t.Errorf("event = %q, ожидался file.uploaded", received.Event)
	}
	if received.FileID != "file-123" {
		t.Errorf("file_id = %q, ожидался file-123", received.FileID)
	}
	if received.Name != "отчёт.pdf" {
		t.Errorf("name = %q, ожидался отчёт.pdf", received.Name)
	}
	if received.Size != 2048 {
		t.Errorf("size = %d, ожидался 2048", received.Size)
	}
	if !received.UsedFallback {
		t.Error("used_fallback = false, ожидался true")
	}
	if received.FallbackAccount != 2 {
		t.Errorf("fallback_account = %d, ожидался 2", received.FallbackAccount)
	}
	if !received.UploadedAt.Equal(record.CreatedAt) {
		t.Errorf("uploaded_at = %v, ожидался %v", received.UploadedAt, record.CreatedAt)
	}
}

func TestDeliver_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := New(server.URL, 5*time.Second, slog.Default())

	if err := n.deliver(uploadEvent{Event: "file.uploaded"}); err == nil {
		t.Error("deliver() не вернул ошибку при статусе 502")
	}
}

func TestUploadSucceeded(t *testing.T) {
	delivered := make(chan uploadEvent, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event uploadEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("Ошибка декодирования тела: %v", err)
		}
		delivered <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := New(server.URL, 5*time.Second, slog.Default())
	n.UploadSucceeded(testRecord(), false, 0)

	select {
	case event := <-delivered:
		if event.FileID != "file-123" {
			t.Errorf("file_id = %q, ожидался file-123", event.FileID)
		}
		if event.UsedFallback {
			t.Error("used_fallback = true, ожидался false")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Уведомление не доставлено за 3s")
	}
}

// UploadSucceeded никогда не возвращает ошибку и не паникует:
// недоступность webhook-а только логируется.
func TestUploadSucceeded_UnreachableURL(t *testing.T) {
	n := New("http://127.0.0.1:1", 200*time.Millisecond, slog.Default())

	n.UploadSucceeded(testRecord(), false, 0)

	// Даём goroutine завершиться; тест проверяет отсутствие паники
	time.Sleep(500 * time.Millisecond)
}
