// Package search реализует HTTP-обработчики поиска курсов по подстроке названия
// без учёта регистра: через параметр пути и через тело запроса.
package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Request подстрока названия для поиска через тело.
type Request struct {
	Title string `json:"title" validate:"required"`
}

// Service описывает поиск курсов.
type Service interface {
	Search(ctx context.Context, title string) ([]*models.Course, error)
}

// Handler ищет курс по названию из пути.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler для GET /course/search/{title}.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск курсов по названию
// @Tags Course
// @Produce json
// @Param title path string true "Подстрока названия"
// @Success 200 {object} response.Response{data=[]models.Course}
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course/search/{title} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Search(r.Context(), chi.URLParam(r, "title"))
	if err != nil {
		log.Error("failed to search courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not search courses"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course": res,
	}))
}

// BodyHandler ищет курс по названию из тела запроса.
type BodyHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewBody создает BodyHandler для POST /course/search.
func NewBody(log *slog.Logger, service Service) *BodyHandler {
	return &BodyHandler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Поиск курсов по названию из тела
// @Tags Course
// @Accept  json
// @Produce  json
// @Param request body Request true "Подстрока названия"
// @Success 200 {object} response.Response{data=[]models.Course}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course/search [post]
func (h *BodyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.searchbody"

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

	res, err := h.service.Search(r.Context(), req.Title)
	if err != nil {
		log.Error("failed to search courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not search courses"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Course found.",
		"course":  res,
	}))
}
