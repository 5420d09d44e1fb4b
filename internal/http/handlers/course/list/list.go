// Package list реализует HTTP-обработчик получения каталога курсов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Service описывает чтение каталога.
type Service interface {
	List(ctx context.Context) ([]*models.Course, error)
}

// Handler возвращает все курсы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог курсов
// @Tags Course
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Course}
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list courses"))
		return
	}

	log.Info("courses listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course": res,
	}))
}
