// Package logout реализует HTTP-обработчик выхода из системы.
//
// Отзыв токена выполняется через денай-лист: jti попадает в него до
// момента, когда токен истёк бы сам, после чего токен перестаёт
// приниматься middleware аутентификации.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/jwt"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
)

// Service описывает интерфейс отзыва токена.
type Service interface {
	Logout(ctx context.Context, claims *jwt.Claims) error
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход из системы
// @Description Отзывает текущий сессионный токен.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Токен отозван"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := r.Context().Value(middlewarectx.TokenClaims).(*jwt.Claims)
	if !ok || claims == nil {
		log.Error("token claims not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not log out"))
		return
	}

	log.Info("user logged out", slog.String("user_uid", claims.UserUID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
