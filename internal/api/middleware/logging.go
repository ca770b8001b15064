// logging.go — slog-логирование HTTP-запросов Upload Module.
// Длительность здесь особенно важна: запрос загрузки может длиться
// десятки секунд при failover по storage backends, и именно этот лог
// показывает полное время от приёма multipart до ответа клиенту.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder перехватывает статус-код и объём ответа.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// levelForStatus выбирает уровень лога по классу статус-кода:
// INFO (1xx-3xx), WARN (4xx), ERROR (5xx).
func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger возвращает middleware, логирующий каждый обработанный
// HTTP-запрос: метод, путь, статус, длительность, объём ответа, remote_addr.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With(slog.String("component", "http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.LogAttrs(r.Context(), levelForStatus(rec.status), "HTTP запрос",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.bytes),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
