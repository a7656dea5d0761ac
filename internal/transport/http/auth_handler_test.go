package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
)

func TestLoginGoogleIssuesToken(t *testing.T) {
	auth := newFakeAuth()
	expires := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	auth.login = &service.AuthResult{
		Token:     "jwt-token",
		ExpiresAt: expires,
		User:      &domain.User{ID: uuid.New(), Email: "traveller@example.com"},
	}
	e := echo.New()
	RegisterAuth(e, auth)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google", strings.NewReader(`{"id_token":"google-id-token"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if auth.lastIDToken != "google-id-token" {
		t.Fatalf("expected id token to be forwarded, got %q", auth.lastIDToken)
	}
	var body AuthTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Token != "jwt-token" || body.ExpiresAt != "2026-01-02T09:30:00Z" {
		t.Fatalf("unexpected token response %+v", body)
	}
	if body.User.Email != "traveller@example.com" {
		t.Fatalf("expected user email, got %q", body.User.Email)
	}
}

func TestLoginGoogleRejected(t *testing.T) {
	auth := newFakeAuth()
	auth.loginErr = fmt.Errorf("%w: token expired", service.ErrInvalidCredentials)
	e := echo.New()
	RegisterAuth(e, auth)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google", strings.NewReader(`{"id_token":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "token expired") {
		t.Fatalf("verifier detail leaked: %s", rec.Body.String())
	}
}

func TestMeAndLogout(t *testing.T) {
	auth := newFakeAuth()
	user := auth.withUser("good")
	e := echo.New()
	RegisterAuth(e, auth)

	rec := doAuthed(e, http.MethodGet, "/api/v1/auth/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body AuthUserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.User.ID != user.ID.String() {
		t.Fatalf("expected user %s, got %s", user.ID, body.User.ID)
	}

	rec = doAuthed(e, http.MethodPost, "/api/v1/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != "good" {
		t.Fatalf("expected session token to be deactivated, got %v", auth.loggedOut)
	}
}
