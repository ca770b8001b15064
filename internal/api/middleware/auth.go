// auth.go — JWT middleware для аутентификации Upload Module.
// Валидирует подпись через JWKS Identity Provider и помещает claims в контекст.
// Upload Module не использует роли: авторизация сводится к совпадению
// владельца ресурса с sub токена, это проверяют handlers.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/filenest/upload-module/internal/api/errors"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyClaims — извлечённые claims в контексте запроса.
const ContextKeyClaims contextKey = "jwt_claims"

// AuthClaims — извлечённые claims из JWT.
// Помещаются в контекст запроса для downstream handlers.
type AuthClaims struct {
	// Subject — sub из JWT (идентификатор пользователя)
	Subject string
	// PreferredUsername — preferred_username из JWT
	PreferredUsername string
	// Email — email из JWT
	Email string
}

// idpClaims — raw claims из JWT Identity Provider для парсинга.
type idpClaims struct {
	jwt.RegisteredClaims
	// PreferredUsername — имя пользователя.
	PreferredUsername string `json:"preferred_username"`
	// Email — электронная почта.
	Email string `json:"email"`
}

// JWTAuth — middleware для JWT-аутентификации через JWKS.
type JWTAuth struct {
	jwks      keyfunc.Keyfunc
	logger    *slog.Logger
	issuer    string
	jwtLeeway time.Duration
}

// NewJWTAuth создаёт JWT middleware с JWKS Identity Provider.
// jwksURL — URL к JWKS endpoint.
// issuer — ожидаемый issuer JWT (может быть пустым — issuer не проверяется).
// jwksClientTimeout — таймаут HTTP-клиента JWKS.
// jwksRefreshInterval — интервал обновления JWKS-ключей.
// jwtLeeway — допустимое отклонение времени при проверке JWT.
func NewJWTAuth(
	jwksURL string,
	issuer string,
	jwksClientTimeout time.Duration,
	jwksRefreshInterval time.Duration,
	jwtLeeway time.Duration,
	logger *slog.Logger,
) (*JWTAuth, error) {
	httpClient := &http.Client{Timeout: jwksClientTimeout}

	// JWKS Storage с фоновым обновлением.
	// NoErrorReturnFirstHTTPReq — стартуем даже если IdP ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &JWTAuth{
		jwks:      k,
		logger:    logger.With(slog.String("component", "jwt_auth")),
		issuer:    issuer,
		jwtLeeway: jwtLeeway,
	}, nil
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, валидирует подпись (RS256), извлекает claims
// и помещает их в контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем Bearer token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			tokenString := parts[1]
			if tokenString == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			// Парсинг и валидация JWT через JWKS
			rawClaims := &idpClaims{}
			parserOpts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"RS256"}),
				jwt.WithExpirationRequired(),
				jwt.WithLeeway(j.jwtLeeway),
			}
			if j.issuer != "" {
				parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
			}

			token, err := jwt.ParseWithClaims(tokenString, rawClaims, j.jwks.KeyfuncCtx(r.Context()), parserOpts...)
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			if !token.Valid {
				apierrors.Unauthorized(w, "Невалидный токен")
				return
			}

			// Извлекаем sub
			subject, err := rawClaims.GetSubject()
			if err != nil || subject == "" {
				apierrors.Unauthorized(w, "Отсутствует sub в токене")
				return
			}

			authClaims := &AuthClaims{
				Subject:           subject,
				PreferredUsername: rawClaims.PreferredUsername,
				Email:             rawClaims.Email,
			}

			// Помещаем claims в контекст
			ctx := context.WithValue(r.Context(), ContextKeyClaims, authClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// SubjectFromContext извлекает sub из контекста запроса.
// Возвращает пустую строку, если claims не найдены.
func SubjectFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// --- ReadinessChecker для Identity Provider ---

// IdPReadinessChecker — проверка доступности Identity Provider через JWKS.
type IdPReadinessChecker struct {
	jwksURL string
	client  *http.Client
}

// NewIdPReadinessChecker создаёт checker доступности Identity Provider.
func NewIdPReadinessChecker(jwksURL string, readinessTimeout time.Duration) *IdPReadinessChecker {
	return &IdPReadinessChecker{
		jwksURL: jwksURL,
		client:  &http.Client{Timeout: readinessTimeout},
	}
}

const statusFail = "fail"

// CheckReady проверяет доступность JWKS endpoint.
func (k *IdPReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, k.jwksURL, http.NoBody)
	if err != nil {
		return statusFail, "ошибка создания запроса: " + err.Error()
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return statusFail, fmt.Sprintf("JWKS недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusFail, fmt.Sprintf("JWKS вернул статус %d", resp.StatusCode)
	}

	// Проверяем, что ответ — валидный JSON с ключами
	var jwksResp struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return "degraded", fmt.Sprintf("JWKS: невалидный JSON: %v", err)
	}

	if len(jwksResp.Keys) == 0 {
		return "degraded", "JWKS: нет ключей"
	}

	return "ok", fmt.Sprintf("JWKS доступен, ключей: %d", len(jwksResp.Keys))
}

// Close освобождает ресурсы JWT middleware.
func (j *JWTAuth) Close() {
	// keyfunc v3 не требует явного закрытия
}
