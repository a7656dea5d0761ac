package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

type PlaceAPI interface {
	Search(ctx context.Context, query string) ([]domain.Destination, error)
}

// RegisterPlaces serves the destination autocomplete. It is public so the
// form can suggest places before sign-in.
func RegisterPlaces(e *echo.Echo, places PlaceAPI) {
	e.GET("/api/v1/places", func(c echo.Context) error {
		results, err := places.Search(c.Request().Context(), c.QueryParam("q"))
		if err != nil {
			if errors.Is(err, service.ErrPlaceSearchUnavailable) {
				c.Logger().Warnf("place search: %v", err)
				return c.JSON(http.StatusServiceUnavailable, util.Error("place search is unavailable"))
			}
			return c.JSON(http.StatusInternalServerError, util.Error("unable to search places"))
		}
		if results == nil {
			results = []domain.Destination{}
		}
		return c.JSON(http.StatusOK, util.Envelope{"places": results})
	})
}
