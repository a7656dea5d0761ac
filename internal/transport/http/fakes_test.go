package http

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/itinerary"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
)

type fakeAuth struct {
	users       map[string]*domain.User
	authErr     error
	login       *service.AuthResult
	loginErr    error
	loggedOut   []string
	lastIDToken string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]*domain.User{}}
}

func (f *fakeAuth) withUser(token string) *domain.User {
	user := &domain.User{ID: uuid.New(), Email: "traveller@example.com"}
	f.users[token] = user
	return user
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	user, ok := f.users[token]
	if !ok {
		return nil, service.ErrUnauthorized
	}
	return user, nil
}

func (f *fakeAuth) LoginWithGoogle(_ context.Context, idToken string) (*service.AuthResult, error) {
	f.lastIDToken = idToken
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.login, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

type fakeTripAPI struct {
	view    *service.TripView
	err     error
	list    *service.TripListResult
	csv     []byte
	url     string
	results []service.TripSearchResult

	lastRaw      itinerary.RawTripRequest
	lastUser     uuid.UUID
	lastTrip     uuid.UUID
	lastStatuses []domain.TripStatus
	lastLimit    int
	lastOffset   int
	lastPageURL  string
	lastQuery    string
}

func (f *fakeTripAPI) Create(_ context.Context, userID uuid.UUID, raw itinerary.RawTripRequest) (*service.TripView, error) {
	f.lastUser, f.lastRaw = userID, raw
	return f.view, f.err
}

func (f *fakeTripAPI) Regenerate(_ context.Context, userID, tripID uuid.UUID) (*service.TripView, error) {
	f.lastUser, f.lastTrip = userID, tripID
	return f.view, f.err
}

func (f *fakeTripAPI) List(_ context.Context, userID uuid.UUID, statuses []domain.TripStatus, limit, offset int) (*service.TripListResult, error) {
	f.lastUser, f.lastStatuses, f.lastLimit, f.lastOffset = userID, statuses, limit, offset
	if f.err != nil {
		return nil, f.err
	}
	if f.list == nil {
		return &service.TripListResult{Items: []domain.TripSummary{}, Limit: limit, Offset: offset}, nil
	}
	return f.list, nil
}

func (f *fakeTripAPI) Get(_ context.Context, userID, tripID uuid.UUID) (*service.TripView, error) {
	f.lastUser, f.lastTrip = userID, tripID
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeTripAPI) Delete(_ context.Context, userID, tripID uuid.UUID) error {
	f.lastUser, f.lastTrip = userID, tripID
	return f.err
}

func (f *fakeTripAPI) ExportCSV(_ context.Context, userID uuid.UUID) ([]byte, error) {
	f.lastUser = userID
	return f.csv, f.err
}

func (f *fakeTripAPI) ExportHTML(_ context.Context, userID, tripID uuid.UUID, pageURL string) (string, error) {
	f.lastUser, f.lastTrip, f.lastPageURL = userID, tripID, pageURL
	return f.url, f.err
}

func (f *fakeTripAPI) Search(_ context.Context, userID uuid.UUID, query string, limit int) ([]service.TripSearchResult, error) {
	f.lastUser, f.lastQuery, f.lastLimit = userID, query, limit
	return f.results, f.err
}

type fakePlaceAPI struct {
	results   []domain.Destination
	err       error
	lastQuery string
}

func (f *fakePlaceAPI) Search(_ context.Context, query string) ([]domain.Destination, error) {
	f.lastQuery = query
	return f.results, f.err
}

var errBoom = errors.New("boom")
