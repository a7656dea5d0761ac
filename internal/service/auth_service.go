package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

// GoogleIdentity is the subset of a verified Google ID token we use.
type GoogleIdentity struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	audience string
}

// NewGoogleVerifier checks ID tokens against Google's published keys.
func NewGoogleVerifier(audience string) GoogleTokenVerifier {
	return &googleVerifier{audience: audience}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.audience)
	if err != nil {
		return nil, err
	}
	identity := &GoogleIdentity{}
	identity.Email, _ = payload.Claims["email"].(string)
	identity.Name, _ = payload.Claims["name"].(string)
	identity.Picture, _ = payload.Claims["picture"].(string)
	switch verified := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = verified
	case string:
		identity.EmailVerified = verified == "true"
	}
	return identity, nil
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	jwt      *util.JWTManager
	google   GoogleTokenVerifier
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, jwtManager *util.JWTManager, google GoogleTokenVerifier) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		jwt:      jwtManager,
		google:   google,
		now:      time.Now,
	}
}

// LoginWithGoogle verifies a Google ID token, creates the account on first
// sign-in and opens a session.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: id token required", ErrInvalidCredentials)
	}
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" || !identity.EmailVerified {
		return nil, fmt.Errorf("%w: google account email not verified", ErrInvalidCredentials)
	}

	user, err := s.users.UpsertGoogleUser(ctx, email, optionalString(identity.Name), optionalString(identity.Picture))
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.DisplayName())
		if err != nil {
			return nil, err
		}
		if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
	}
	return nil, lastErr
}

// Authenticate resolves a bearer token to its user. The token must parse and
// belong to an active session of that same user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	session, err := s.sessions.FindActiveSession(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !session.Valid(s.now()) || session.UserID != userID {
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeactivateSession(ctx, token)
}

// PurgeExpiredSessions removes sessions that expired more than grace ago.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context, grace time.Duration) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now().Add(-grace))
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
