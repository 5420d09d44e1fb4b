// Package logout реализует HTTP-обработчик выхода: текущий токен отзывается
// и до истечения срока не принимается JWTMiddleware.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-enrollment/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/jwt"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/sl"
)

// Service описывает отзыв токена.
type Service interface {
	Logout(ctx context.Context, token string, claims *jwt.CustomClaims) (string, error)
}

// Handler обрабатывает выход пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Отзывает текущий JWT до истечения его срока действия.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Токен отозван"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, okToken := r.Context().Value(middlewarectx.Token).(string)
	claims, okClaims := r.Context().Value(middlewarectx.Claims).(*jwt.CustomClaims)
	if !okToken || !okClaims || token == "" {
		log.Error("token not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	msg, err := h.service.Logout(r.Context(), token, claims)
	if err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not logout"))
		return
	}

	log.Info("token revoked", slog.String("username", claims.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": msg,
	}))
}
