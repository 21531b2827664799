// Package key реализует HTTP-обработчик выдачи публичного ключа
// платёжного сервиса для инициализации оплаты на стороне клиента.
package key

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/response"
)

// Handler обрабатывает HTTP-запросы публичного ключа.
type Handler struct {
	log   *slog.Logger
	keyID string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, keyID string) *Handler {
	return &Handler{log: log, keyID: keyID}
}

// ServeHTTP godoc
// @Summary Публичный ключ платёжного сервиса
// @Description Возвращает идентификатор ключа для платёжного виджета.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Идентификатор ключа"
// @Router /payments/key [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"key_id": h.keyID,
	}))
}
