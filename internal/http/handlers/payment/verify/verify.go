// Package verify реализует HTTP-обработчик подтверждения оплаты подписки.
//
// Колбэк оплаты несёт идентификатор платежа и подпись. Подпись
// проверяется сервисом по идентификатору подписки из учётной записи,
// при успехе подписка активируется.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/lms-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	subsvc "github.com/magabrotheeeer/lms-access/internal/services/subscription"
)

// Request — структура данных платёжного колбэка.
type Request struct {
	PaymentID      string `json:"payment_id" validate:"required"`
	SubscriptionID string `json:"subscription_id" validate:"required"`
	Signature      string `json:"signature" validate:"required,hexadecimal"`
}

// Service описывает интерфейс подтверждения оплаты.
type Service interface {
	VerifyPayment(ctx context.Context, userUID, paymentID, providedSignature, subscriptionID string) error
}

// Handler обрабатывает HTTP-запросы подтверждения оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтверждение оплаты
// @Description Проверяет подпись платежа и активирует подписку.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные платёжного колбэка"
// @Success 200 {object} response.Response "Подписка активирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неверная подпись"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет подписки, ожидающей оплаты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Сбой записи в журнал платежей"
// @Router /payments/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.VerifyPayment(r.Context(), userUID, req.PaymentID, req.Signature, req.SubscriptionID)
	if err != nil {
		switch {
		case errors.Is(err, subsvc.ErrPaymentNotVerified):
			log.Error("payment signature mismatch")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment not verified"))
		case errors.Is(err, subsvc.ErrOperationNotPermitted):
			log.Error("no subscription awaiting payment", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("operation not permitted"))
		case errors.Is(err, subsvc.ErrLedgerWrite):
			log.Error("payment record write failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not record payment, retry the callback"))
		default:
			log.Error("failed to verify payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify payment"))
		}
		return
	}

	log.Info("payment verified", slog.String("payment_id", req.PaymentID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
