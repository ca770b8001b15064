// Пакет config — загрузка и валидация конфигурации Upload Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Лимиты по умолчанию.
const (
	// DefaultMaxFileSize — максимальный размер одного файла (100 MiB).
	DefaultMaxFileSize = 100 << 20
	// DefaultStorageLimit — агрегатный лимит хранения на пользователя (1 GiB).
	DefaultStorageLimit = 1 << 30
)

// MediaNode — конфигурация одного media node (primary backend).
// Порядок в списке задаёт приоритет: первый — основной, остальные — fallback.
type MediaNode struct {
	// URL — базовый URL node (https://media-1.example.com)
	URL string
	// Key — API-ключ для Authorization: Bearer
	Key string
}

// Config содержит все параметры конфигурации Upload Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8040-8049)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 120s — upload крупных файлов)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Лимиты хранения ---

	// MaxFileSize — максимальный размер одного файла в байтах
	MaxFileSize int64
	// StorageLimit — агрегатный лимит хранения на пользователя в байтах
	StorageLimit int64
	// UploadTimeout — бюджет wall-clock на весь запрос загрузки (по умолчанию 60s)
	UploadTimeout time.Duration

	// --- Storage backends ---

	// MediaNodes — упорядоченный список primary backends
	MediaNodes []MediaNode
	// MediaNodeTimeout — таймаут HTTP-клиента media node (по умолчанию 30s)
	MediaNodeTimeout time.Duration
	// GCSBucket — bucket терминального fallback (пусто — fallback отключён)
	GCSBucket string
	// GCSPublicURL — публичный префикс URL объектов bucket-а
	GCSPublicURL string

	// --- JWT / JWKS ---

	// JWKSURL — URL JWKS endpoint Identity Provider
	JWKSURL string
	// JWTIssuer — ожидаемый issuer (пусто — не проверяется)
	JWTIssuer string
	// JWKSClientTimeout — таймаут HTTP-клиента JWKS (по умолчанию 10s)
	JWKSClientTimeout time.Duration
	// JWKSRefreshInterval — интервал обновления JWKS-ключей (по умолчанию 1h)
	JWKSRefreshInterval time.Duration
	// JWTLeeway — допустимое отклонение времени при проверке JWT (по умолчанию 30s)
	JWTLeeway time.Duration

	// --- Кэш метаданных ---

	// CacheSize — максимальное количество записей LRU-кэша (по умолчанию 1000)
	CacheSize int
	// CacheTTL — время жизни записи кэша (по умолчанию 5m)
	CacheTTL time.Duration

	// --- Notifier ---

	// NotifyURL — webhook для уведомлений об успешной загрузке (пусто — отключено)
	NotifyURL string
	// NotifyTimeout — таймаут webhook-запроса (по умолчанию 10s)
	NotifyTimeout time.Duration

	// --- Dephealth ---

	// DephealthGroup — имя группы в метриках topologymetrics
	DephealthGroup string
	// DephealthCheckInterval — интервал проверки зависимостей (по умолчанию 30s)
	DephealthCheckInterval time.Duration
	// DephealthIsEntry — лейбл isentry=yes для всех зависимостей
	DephealthIsEntry bool
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
//
//nolint:cyclop // последовательная загрузка переменных окружения
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// UM_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("UM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("UM_PORT: %w", err)
	}

	// UM_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("UM_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("UM_LOG_LEVEL: %w", err)
	}

	// UM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("UM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("UM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("UM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_HTTP_READ_TIMEOUT: %w", err)
	}

	// Запись дольше чтения: ответ отдаётся после завершения backend upload
	cfg.HTTPWriteTimeout, err = getEnvDuration("UM_HTTP_WRITE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg.HTTPIdleTimeout, err = getEnvDuration("UM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("UM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("UM_DB_HOST")
	if err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("UM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("UM_DB_PORT: %w", err)
	}
	cfg.DBName, err = getEnvRequired("UM_DB_NAME")
	if err != nil {
		return nil, err
	}
	cfg.DBUser, err = getEnvRequired("UM_DB_USER")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword, err = getEnvRequired("UM_DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("UM_DB_SSL_MODE", "disable")

	// --- Лимиты хранения ---

	// UM_MAX_FILE_SIZE — максимальный размер одного файла в байтах
	cfg.MaxFileSize, err = getEnvInt64("UM_MAX_FILE_SIZE", DefaultMaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("UM_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("UM_MAX_FILE_SIZE: значение должно быть > 0")
	}

	// UM_STORAGE_LIMIT — агрегатный лимит на пользователя в байтах
	cfg.StorageLimit, err = getEnvInt64("UM_STORAGE_LIMIT", DefaultStorageLimit)
	if err != nil {
		return nil, fmt.Errorf("UM_STORAGE_LIMIT: %w", err)
	}
	if cfg.StorageLimit <= 0 {
		return nil, fmt.Errorf("UM_STORAGE_LIMIT: значение должно быть > 0")
	}

	// UM_UPLOAD_TIMEOUT — бюджет wall-clock на запрос загрузки
	cfg.UploadTimeout, err = getEnvDuration("UM_UPLOAD_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_UPLOAD_TIMEOUT: %w", err)
	}

	// --- Storage backends ---

	// UM_MEDIA_NODES — список URL media nodes через запятую (порядок = приоритет)
	// UM_MEDIA_NODE_KEYS — API-ключи через запятую (позиционное соответствие)
	nodesRaw, err := getEnvRequired("UM_MEDIA_NODES")
	if err != nil {
		return nil, err
	}
	keysRaw, err := getEnvRequired("UM_MEDIA_NODE_KEYS")
	if err != nil {
		return nil, err
	}
	cfg.MediaNodes, err = parseMediaNodes(nodesRaw, keysRaw)
	if err != nil {
		return nil, fmt.Errorf("UM_MEDIA_NODES: %w", err)
	}

	cfg.MediaNodeTimeout, err = getEnvDuration("UM_MEDIA_NODE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_MEDIA_NODE_TIMEOUT: %w", err)
	}

	// UM_GCS_BUCKET — терминальный fallback (опционально)
	cfg.GCSBucket = getEnvDefault("UM_GCS_BUCKET", "")
	cfg.GCSPublicURL = getEnvDefault("UM_GCS_PUBLIC_URL", "https://storage.googleapis.com")

	// --- JWT / JWKS ---

	cfg.JWKSURL, err = getEnvRequired("UM_JWKS_URL")
	if err != nil {
		return nil, err
	}
	cfg.JWTIssuer = getEnvDefault("UM_JWT_ISSUER", "")
	cfg.JWKSClientTimeout, err = getEnvDuration("UM_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_JWKS_CLIENT_TIMEOUT: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvDuration("UM_JWKS_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("UM_JWKS_REFRESH_INTERVAL: %w", err)
	}
	cfg.JWTLeeway, err = getEnvDuration("UM_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_JWT_LEEWAY: %w", err)
	}

	// --- Кэш метаданных ---

	cfg.CacheSize, err = getEnvInt("UM_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("UM_CACHE_SIZE: %w", err)
	}
	cfg.CacheTTL, err = getEnvDuration("UM_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("UM_CACHE_TTL: %w", err)
	}

	// --- Notifier ---

	cfg.NotifyURL = getEnvDefault("UM_NOTIFY_URL", "")
	cfg.NotifyTimeout, err = getEnvDuration("UM_NOTIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_NOTIFY_TIMEOUT: %w", err)
	}

	// --- Dephealth ---

	cfg.DephealthGroup = getEnvDefault("UM_DEPHEALTH_GROUP", "filenest")
	cfg.DephealthCheckInterval, err = getEnvDuration("UM_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthIsEntry, err = getEnvBool("UM_DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("UM_DEPHEALTH_ISENTRY: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает DSN подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// parseMediaNodes разбирает списки URL и ключей media nodes.
// Количество ключей должно совпадать с количеством URL.
func parseMediaNodes(nodesRaw, keysRaw string) ([]MediaNode, error) {
	urls := splitTrim(nodesRaw)
	keys := splitTrim(keysRaw)

	if len(urls) == 0 {
		return nil, fmt.Errorf("список media nodes пуст")
	}
	if len(urls) != len(keys) {
		return nil, fmt.Errorf("количество ключей (%d) не совпадает с количеством node (%d)", len(keys), len(urls))
	}

	nodes := make([]MediaNode, len(urls))
	for i, u := range urls {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return nil, fmt.Errorf("некорректный URL media node: %q", u)
		}
		nodes[i] = MediaNode{
			URL: strings.TrimRight(u, "/"),
			Key: keys[i],
		}
	}
	return nodes, nil
}

// splitTrim разбивает строку по запятым и отбрасывает пустые элементы.
func splitTrim(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 из переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
