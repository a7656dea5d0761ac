package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return requireAuth(auth, false, func(c echo.Context, status int, message string) error {
		return c.JSON(status, util.Error(message))
	})
}

// RequirePageAuth is RequireAuth for browser pages: the token may also come
// from the "token" query parameter and failures render as HTML.
func RequirePageAuth(auth Authenticator) echo.MiddlewareFunc {
	return requireAuth(auth, true, func(c echo.Context, status int, message string) error {
		return c.HTML(status, messagePage(http.StatusText(status), message))
	})
}

func requireAuth(auth Authenticator, allowQuery bool, fail func(echo.Context, int, string) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c, allowQuery)
			if err != nil {
				return fail(c, http.StatusUnauthorized, err.Error())
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					return fail(c, http.StatusUnauthorized, "invalid or expired session")
				}
				c.Logger().Errorf("authenticate: %v", err)
				return fail(c, http.StatusInternalServerError, "unable to verify session")
			}
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context, allowQuery bool) (string, error) {
	authHeader := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if authHeader == "" {
		if allowQuery {
			if token := strings.TrimSpace(c.QueryParam("token")); token != "" {
				return token, nil
			}
		}
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(contextTokenKey).(string)
	return token
}
