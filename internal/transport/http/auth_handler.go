package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

// AuthAPI is the part of the auth service the HTTP layer uses.
type AuthAPI interface {
	Authenticator
	LoginWithGoogle(ctx context.Context, idToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth AuthAPI
}

func RegisterAuth(e *echo.Echo, auth AuthAPI) {
	h := &AuthHandler{auth: auth}

	g := e.Group("/api/v1/auth")
	g.POST("/google", h.loginGoogle)
	g.POST("/logout", h.logout, RequireAuth(auth))
	g.GET("/me", h.me, RequireAuth(auth))
}

func (h *AuthHandler) loginGoogle(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("google sign-in failed"))
		}
		c.Logger().Errorf("google login: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to sign in"))
	}

	return c.JSON(http.StatusOK, AuthTokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toAuthUser(result.User),
	})
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), currentToken(c)); err != nil {
		c.Logger().Errorf("logout: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to sign out"))
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, AuthUserResponse{User: toAuthUser(user)})
}
