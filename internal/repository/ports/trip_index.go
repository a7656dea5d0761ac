package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

type TripIndex interface {
	IndexTrip(ctx context.Context, doc domain.TripSearchDocument) error
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
	SearchTrips(ctx context.Context, userID uuid.UUID, query string, limit int) ([]domain.TripSearchHit, error)
}
