package service

import (
	"context"
	"fmt"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]domain.Destination, error)
}

// PlaceService backs the destination autocomplete.
type PlaceService struct {
	searcher PlaceSearcher
}

func NewPlaceService(searcher PlaceSearcher) *PlaceService {
	return &PlaceService{searcher: searcher}
}

func (s *PlaceService) Search(ctx context.Context, query string) ([]domain.Destination, error) {
	if s.searcher == nil {
		return nil, ErrPlaceSearchUnavailable
	}
	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlaceSearchUnavailable, err)
	}
	return results, nil
}
