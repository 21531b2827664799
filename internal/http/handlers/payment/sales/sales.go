// Package sales реализует HTTP-обработчик помесячного отчёта о продажах
// подписок для административной панели.
package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	subsvc "github.com/magabrotheeeer/lms-access/internal/services/subscription"
)

// Service описывает интерфейс построения отчёта о продажах.
type Service interface {
	MonthlySales(ctx context.Context, count, skip int) (map[string]int, error)
}

// Handler обрабатывает HTTP-запросы отчёта о продажах.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отчёт о продажах
// @Description Возвращает количество оформленных подписок по месяцам. Доступно только администраторам.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param count query int false "Сколько подписок запросить у платёжного сервиса" default(100)
// @Param skip query int false "Сколько подписок пропустить" default(0)
// @Success 200 {object} map[string]any "Продажи по месяцам"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 502 {object} response.ErrorResponse "Платёжный сервис недоступен"
// @Router /admin/sales [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.sales"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count <= 0 {
		count = 100
	}
	skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}

	sales, err := h.service.MonthlySales(r.Context(), count, skip)
	if err != nil {
		if errors.Is(err, subsvc.ErrProvider) {
			log.Error("payment provider failure", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment provider unavailable"))
			return
		}
		log.Error("failed to build sales report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build sales report"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"sales": sales,
	}))
}
