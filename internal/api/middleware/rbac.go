package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/api/metrics"
	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// RequireAdmin admits only callers with a row in the admin allow-list. A
// missing row and a failed lookup are both treated as not an administrator;
// failures are logged. Must run after Auth.
func RequireAdmin(admins ports.AdminRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" {
				return forbid(c)
			}

			_, err := admins.FindByUserID(c.Request().Context(), userID)
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, domain.ErrMembershipNotFound):
			default:
				log.Error().Err(err).Str("user_id", userID).Msg("admin lookup failed, denying access")
			}
			return forbid(c)
		}
	}
}

func forbid(c echo.Context) error {
	metrics.AdminDeniedTotal.Inc()
	return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
}
