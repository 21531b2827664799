package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	"github.com/magabrotheeeer/lms-access/internal/models"
)

// AccountReader читает актуальную учётную запись пользователя.
type AccountReader interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// RequireRoles пропускает запрос только для перечисленных ролей.
// Роль берётся из claims токена.
func RequireRoles(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role == "" {
				log.Error("role missing in request context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if !slices.Contains(roles, role) {
				log.Error("access denied by role", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SubscriptionStatusMiddleware пропускает запрос, если пользователь —
// администратор или его подписка активна. Статус перечитывается из
// учётной записи: токен, выпущенный до отмены подписки, не должен
// открывать платный контент.
func SubscriptionStatusMiddleware(accounts AccountReader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := accounts.GetUser(r.Context(), userUID)
			if err != nil {
				log.Error("failed to get user account", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if user.Role != models.RoleAdmin && user.SubscriptionStatus != models.SubscriptionActive {
				log.Error("active subscription required",
					slog.String("subscription_status", user.SubscriptionStatus))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("active subscription required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
