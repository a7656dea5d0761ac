package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

type UserRepository interface {
	UpsertGoogleUser(ctx context.Context, email string, fullName *string, imageURL *string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
