// Package update реализует HTTP-обработчик частичного обновления курса (только admin).
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Request изменяемые поля курса. Отсутствующие поля не меняются.
type Request struct {
	Title              *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Description        *string  `json:"description,omitempty"`
	Instructor         *string  `json:"instructor,omitempty"`
	EnrollmentDeadline *string  `json:"enrollmentDeadline,omitempty"`
	StartingDate       *string  `json:"startingDate,omitempty"`
	Type               *string  `json:"type,omitempty"`
	Status             *string  `json:"status,omitempty" validate:"omitempty,oneof=available filledup"`
	Price              *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Capacity           *int     `json:"capacity,omitempty" validate:"omitempty,gt=0"`
}

// Service описывает обновление курса.
type Service interface {
	Update(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error)
}

// Handler обрабатывает обновление курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление курса
// @Tags Course
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Course}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.update"

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

	course, err := h.service.Update(r.Context(), id, models.CourseUpdate{
		Title:              req.Title,
		Description:        req.Description,
		Instructor:         req.Instructor,
		EnrollmentDeadline: req.EnrollmentDeadline,
		StartingDate:       req.StartingDate,
		Type:               req.Type,
		Status:             req.Status,
		Price:              req.Price,
		Capacity:           req.Capacity,
	})
	if err != nil {
		log.Error("failed to update course", sl.Err(err))
		status := response.StatusFromError(err)
		w.WriteHeader(status)
		if status == http.StatusNotFound {
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	username, _ := r.Context().Value(middlewarectx.User).(string)
	log.Info("course updated", slog.Int64("course_id", id), slog.String("username", username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": fmt.Sprintf("%s updated the course successfully!", username),
		"course":  course,
	}))
}
