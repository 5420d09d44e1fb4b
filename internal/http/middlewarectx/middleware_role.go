package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-enrollment/internal/http/response"
)

// RequireRole пропускает запрос только для пользователя с указанной ролью.
// Должен стоять после JWTMiddleware.
func RequireRole(role string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ := r.Context().Value(Role).(string)
			if got != role {
				log.Warn("role check failed", slog.String("required", role), slog.String("role", got))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden: "+role+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
