package service

import (
	"context"
	"errors"
	"testing"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

type fakePlaceSearcher struct {
	query   string
	results []domain.Destination
	err     error
}

func (f *fakePlaceSearcher) Search(ctx context.Context, query string) ([]domain.Destination, error) {
	f.query = query
	return f.results, f.err
}

func TestPlaceServiceSearch(t *testing.T) {
	searcher := &fakePlaceSearcher{results: []domain.Destination{{Label: "Lisbon, Portugal"}}}
	svc := NewPlaceService(searcher)

	results, err := svc.Search(context.Background(), "lisb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.query != "lisb" || len(results) != 1 {
		t.Fatalf("expected searcher results to pass through")
	}

	searcher.err = errors.New("timeout")
	if _, err := svc.Search(context.Background(), "lisb"); !errors.Is(err, ErrPlaceSearchUnavailable) {
		t.Fatalf("expected ErrPlaceSearchUnavailable, got %v", err)
	}

	if _, err := NewPlaceService(nil).Search(context.Background(), "lisb"); !errors.Is(err, ErrPlaceSearchUnavailable) {
		t.Fatalf("expected ErrPlaceSearchUnavailable without a searcher, got %v", err)
	}
}
