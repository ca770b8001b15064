package service

import (
	"testing"
	"time"

	"github.com/bigkaa/filenest/upload-module/internal/domain/model"
)

// TestCacheService_GetSet проверяет базовые операции Get/Set.
func TestCacheService_GetSet(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)

	record := &model.FileRecord{
		ID:      "test-uuid-1",
		Name:    "test.txt",
		Type:    "text/plain",
		Size:    1024,
		OwnerID: "user-1",
	}

	// Cache miss
	_, ok := cache.Get("test-uuid-1")
	if ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	// Set + cache hit
	cache.Set("test-uuid-1", record)
	got, ok := cache.Get("test-uuid-1")
	if !ok {
		t.Fatal("ожидался cache hit после Set")
	}
	if got.ID != "test-uuid-1" {
		t.Errorf("ID = %q, ожидался %q", got.ID, "test-uuid-1")
	}
	if got.Name != "test.txt" {
		t.Errorf("Name = %q, ожидался %q", got.Name, "test.txt")
	}
}

// TestCacheService_Delete проверяет удаление из кэша (инвалидация).
func TestCacheService_Delete(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)

	record := &model.FileRecord{
		ID:      "delete-me",
		OwnerID: "user-1",
	}

	cache.Set("delete-me", record)

	// Проверяем что запись есть
	_, ok := cache.Get("delete-me")
	if !ok {
		t.Fatal("ожидался cache hit перед удалением")
	}

	// Удаляем
	cache.Delete("delete-me")

	// Проверяем что записи больше нет
	_, ok = cache.Get("delete-me")
	if ok {
		t.Fatal("ожидался cache miss после Delete")
	}
}

// TestCacheService_TTLExpiration проверяет автоматическое истечение TTL.
func TestCacheService_TTLExpiration(t *testing.T) {
	// Короткий TTL = 50ms для теста
	cache := NewCacheService(100, 50*time.Millisecond)

	record := &model.FileRecord{
		ID:      "ttl-test",
		OwnerID: "user-1",
	}

	cache.Set("ttl-test", record)

	// Сразу после Set — должен быть hit
	_, ok := cache.Get("ttl-test")
	if !ok {
		t.Fatal("ожидался cache hit сразу после Set")
	}

	// Ждём истечения TTL
	time.Sleep(100 * time.Millisecond)

	// После истечения TTL — должен быть miss
	_, ok = cache.Get("ttl-test")
	if ok {
		t.Fatal("ожидался cache miss после истечения TTL")
	}
}

// TestCacheService_Eviction проверяет вытеснение при превышении maxSize.
func TestCacheService_Eviction(t *testing.T) {
	// Кэш на 2 записи
	cache := NewCacheService(2, 5*time.Minute)

	r1 := &model.FileRecord{ID: "r1"}
	r2 := &model.FileRecord{ID: "r2"}
	r3 := &model.FileRecord{ID: "r3"}

	cache.Set("r1", r1)
	cache.Set("r2", r2)

	// Обе записи в кэше
	if _, ok := cache.Get("r1"); !ok {
		t.Fatal("ожидался cache hit для r1")
	}
	if _, ok := cache.Get("r2"); !ok {
		t.Fatal("ожидался cache hit для r2")
	}

	// Добавляем третью — r1 должен быть вытеснен (LRU: последний Get был для r2)
	cache.Set("r3", r3)

	// r3 должна быть в кэше
	if _, ok := cache.Get("r3"); !ok {
		t.Fatal("ожидался cache hit для r3")
	}
}

// TestCacheService_Update проверяет обновление записи в кэше.
func TestCacheService_Update(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)

	record1 := &model.FileRecord{
		ID:   "update-test",
		Name: "old.txt",
	}
	record2 := &model.FileRecord{
		ID:   "update-test",
		Name: "new.txt",
	}

	cache.Set("update-test", record1)
	cache.Set("update-test", record2)

	got, ok := cache.Get("update-test")
	if !ok {
		t.Fatal("ожидался cache hit после обновления")
	}
	if got.Name != "new.txt" {
		t.Errorf("Name = %q, ожидался %q", got.Name, "new.txt")
	}
}
