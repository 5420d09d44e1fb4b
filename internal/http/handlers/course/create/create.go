// Package create реализует HTTP-обработчик добавления курса в каталог (только admin).
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// Request данные курса. Цена в основных единицах валюты; без цены ставится 99.
type Request struct {
	Title              string   `json:"title" validate:"required"`
	Description        string   `json:"description" validate:"required"`
	Instructor         string   `json:"instructor" validate:"required"`
	EnrollmentDeadline string   `json:"enrollmentDeadline" validate:"required"`
	StartingDate       string   `json:"startingDate" validate:"required"`
	Type               string   `json:"type" validate:"required"`
	Status             string   `json:"status,omitempty" validate:"omitempty,oneof=available filledup"`
	Price              *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Capacity           *int     `json:"capacity,omitempty" validate:"omitempty,gt=0"`
}

// Service описывает создание курса.
type Service interface {
	Create(ctx context.Context, c models.Course) (*models.Course, error)
}

// Handler обрабатывает создание курса.
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
// @Summary Создание курса
// @Tags Course
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные курса"
// @Success 201 {object} response.Response{data=models.Course} "Курс создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /course [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

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

	c := models.Course{
		Title:              req.Title,
		Description:        req.Description,
		Instructor:         req.Instructor,
		EnrollmentDeadline: req.EnrollmentDeadline,
		StartingDate:       req.StartingDate,
		Type:               req.Type,
		Status:             req.Status,
		Capacity:           req.Capacity,
	}
	if req.Price != nil {
		c.Price = *req.Price
	}

	course, err := h.service.Create(r.Context(), c)
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.MessageFromError(err)))
		return
	}

	log.Info("course created", slog.Int64("course_id", course.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Course created",
		"course":  course,
	}))
}
