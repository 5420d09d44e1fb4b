// Package read реализует HTTP-обработчик получения курса по ID.
package read

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
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Service описывает чтение курса.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Course, error)
}

// Handler обрабатывает запросы на получение курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Курс по ID
// @Tags Course
// @Produce json
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response{data=models.Course}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

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

	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to read course", sl.Err(err))
		status := response.StatusFromError(err)
		w.WriteHeader(status)
		if status == http.StatusNotFound {
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		render.JSON(w, r, response.Error("could not read course"))
		return
	}

	log.Info("course read", slog.Int64("course_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course": res,
	}))
}
