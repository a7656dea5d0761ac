package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

// TripRepository stores generated trips. Every method is scoped to the owning
// user; a trip owned by someone else behaves as missing.
type TripRepository interface {
	Create(ctx context.Context, userID uuid.UUID, doc domain.Document) (*domain.TripRecord, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.TripRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.TripFilter) ([]domain.TripRecord, error)
	CountByUser(ctx context.Context, userID uuid.UUID, filter domain.TripFilter) (int, error)
	// Complete moves a pending trip to status and merges patch into its
	// document. It returns sql.ErrNoRows when no pending trip matches.
	Complete(ctx context.Context, userID, id uuid.UUID, status domain.TripStatus, patch domain.Document) (*domain.TripRecord, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
