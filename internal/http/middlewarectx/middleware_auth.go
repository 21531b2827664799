// Package middlewarectx содержит HTTP middleware проверки доступа.
//
// JWTMiddleware проверяет подпись и срок действия токена из заголовка
// Authorization и наличие его jti в денай-листе отозванных токенов,
// после чего кладёт claims в контекст запроса. RequireRoles и
// SubscriptionStatusMiddleware принимают решения о доступе: роль берётся
// из токена, статус подписки перечитывается из учётной записи, потому что
// снимок в токене мог устареть.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
	// TokenClaims — ключ для полных claims токена в контексте
	TokenClaims Key = "claims"
)

// Denylist проверяет, был ли токен отозван при выходе из системы.
type Denylist interface {
	IsDenylisted(ctx context.Context, jti string) (bool, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден и не отозван, добавляет claims в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(maker jwt.Maker, denylist Denylist, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					log.Error("token expired")
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("token expired"))
					return
				}
				log.Error("invalid token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token"))
				return
			}

			revoked, err := denylist.IsDenylisted(r.Context(), claims.ID)
			if err != nil {
				log.Error("failed to check token revocation", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if revoked {
				log.Error("token revoked")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("token revoked"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Role, claims.Role)
			ctx = context.WithValue(ctx, TokenClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
