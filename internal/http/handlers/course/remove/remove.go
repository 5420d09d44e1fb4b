// Package remove реализует HTTP-обработчик удаления курса (только admin).
// Строки журнала записей сохраняют снимок названия и не удаляются.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
)

// Service описывает удаление курса.
type Service interface {
	Remove(ctx context.Context, id int64) error
}

// Handler обрабатывает удаление курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление курса
// @Tags Course
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response "Курс удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		log.Error("failed to remove course", sl.Err(err))
		status := response.StatusFromError(err)
		w.WriteHeader(status)
		if status == http.StatusNotFound {
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		render.JSON(w, r, response.Error("could not remove course"))
		return
	}

	log.Info("course removed", slog.Int64("course_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Course deleted",
	}))
}
