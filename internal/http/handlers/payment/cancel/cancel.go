// Package cancel реализует HTTP-обработчик отмены подписки.
//
// В ответе сообщается, был ли платёж возвращён: возврат выполняется,
// только если с подтверждения оплаты прошло меньше четырнадцати дней.
package cancel

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

// Service описывает интерфейс отмены подписки.
type Service interface {
	Cancel(ctx context.Context, userUID string) (bool, error)
}

// Handler обрабатывает HTTP-запросы отмены подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Отменяет подписку в платёжном сервисе, при действующем окне возврата возвращает платёж.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Подписка отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет подписки для отмены"
// @Failure 502 {object} response.ErrorResponse "Платёжный сервис недоступен"
// @Failure 500 {object} response.ErrorResponse "Запись журнала платежей не найдена"
// @Router /payments/unsubscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.cancel"

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

	refunded, err := h.service.Cancel(r.Context(), userUID)
	if err != nil {
		switch {
		case errors.Is(err, subsvc.ErrOperationNotPermitted):
			log.Error("cancellation not permitted", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("operation not permitted"))
		case errors.Is(err, subsvc.ErrProvider):
			log.Error("payment provider failure", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment provider unavailable"))
		case errors.Is(err, subsvc.ErrLedgerEntryMissing):
			log.Error("payment record missing", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("payment record missing"))
		default:
			log.Error("failed to cancel subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel subscription"))
		}
		return
	}

	log.Info("subscription cancelled", slog.Bool("refunded", refunded))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"refunded": refunded,
	}))
}
