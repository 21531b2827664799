// Package subscribe реализует HTTP-обработчик оформления подписки.
//
// Подписка создаётся в платёжном сервисе, пользователь переводится
// в статус pending до подтверждения оплаты.
package subscribe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	subsvc "github.com/magabrotheeeer/lms-access/internal/services/subscription"
)

// Service описывает интерфейс оформления подписки.
type Service interface {
	Create(ctx context.Context, userUID string) (string, error)
}

// Handler обрабатывает HTTP-запросы оформления подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оформить подписку
// @Description Создает подписку в платёжном сервисе и возвращает её идентификатор для оплаты.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Подписка создана, ожидает оплаты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Операция недоступна для роли или состояния подписки"
// @Failure 502 {object} response.ErrorResponse "Платёжный сервис недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.subscribe"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	subscriptionID, err := h.service.Create(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, subsvc.ErrOperationNotPermitted):
			log.Error("subscription purchase not permitted", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("operation not permitted"))
		case errors.Is(err, subsvc.ErrProvider):
			log.Error("payment provider failure", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment provider unavailable"))
		default:
			log.Error("failed to create subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create subscription"))
		}
		return
	}

	log.Info("subscription created", slog.String("subscription_id", subscriptionID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": subscriptionID,
	}))
}
