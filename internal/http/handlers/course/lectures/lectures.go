// Package lectures реализует HTTP-обработчик списка лекций курса.
// Маршрут закрыт middleware проверки подписки: лекции видят только
// администраторы и пользователи с активной подпиской.
package lectures

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/lms-access/internal/http/response"
	"github.com/magabrotheeeer/lms-access/internal/lib/sl"
	"github.com/magabrotheeeer/lms-access/internal/models"
)

// Service описывает интерфейс чтения лекций курса.
type Service interface {
	Lectures(ctx context.Context, courseID int) ([]*models.Lecture, error)
}

// Handler обрабатывает HTTP-запросы списка лекций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Лекции курса
// @Description Возвращает лекции курса. Требуется активная подписка или роль администратора.
// @Tags Courses
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор курса"
// @Success 200 {object} map[string]any "Список лекций"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 403 {object} response.ErrorResponse "Требуется активная подписка"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses/{id}/lectures [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.lectures"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	lectures, err := h.service.Lectures(r.Context(), id)
	if err != nil {
		log.Error("failed to list lectures", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list lectures"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lectures": lectures,
	}))
}
