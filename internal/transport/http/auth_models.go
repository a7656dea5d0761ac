package http

import (
	"time"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// AuthUser models the user representation returned by auth endpoints.
type AuthUser struct {
	ID           string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email        string    `json:"email" example:"traveller@example.com"`
	FullName     *string   `json:"full_name,omitempty" example:"Ada Traveller"`
	UserImageURL *string   `json:"user_image_url,omitempty" example:"https://lh3.googleusercontent.com/a/photo.png"`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-01-02T09:30:00Z"`
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expires_at" example:"2024-01-02T09:30:00Z"`
	User      AuthUser `json:"user"`
}

// AuthUserResponse wraps a user object.
type AuthUserResponse struct {
	User AuthUser `json:"user"`
}

// SuccessResponse denotes a simple success flag.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func toAuthUser(user *domain.User) AuthUser {
	return AuthUser{
		ID:           user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		UserImageURL: user.ImageURL,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
