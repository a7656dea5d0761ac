package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/gemini"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/itinerary"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

// TripAPI is the part of the trip service the HTTP layer uses.
type TripAPI interface {
	Create(ctx context.Context, userID uuid.UUID, raw itinerary.RawTripRequest) (*service.TripView, error)
	Regenerate(ctx context.Context, userID, tripID uuid.UUID) (*service.TripView, error)
	List(ctx context.Context, userID uuid.UUID, statuses []domain.TripStatus, limit, offset int) (*service.TripListResult, error)
	Get(ctx context.Context, userID, tripID uuid.UUID) (*service.TripView, error)
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
	ExportCSV(ctx context.Context, userID uuid.UUID) ([]byte, error)
	ExportHTML(ctx context.Context, userID, tripID uuid.UUID, pageURL string) (string, error)
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]service.TripSearchResult, error)
}

type TripHandler struct {
	trips         TripAPI
	publicBaseURL string
}

// RegisterTrips mounts the trip routes. publicBaseURL is the externally
// reachable origin used for share links in exported pages.
func RegisterTrips(e *echo.Echo, auth Authenticator, trips TripAPI, publicBaseURL string) {
	h := &TripHandler{trips: trips, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}

	g := e.Group("/api/v1/trips", RequireAuth(auth))
	g.POST("", h.createTrip)
	g.GET("", h.listTrips)
	g.GET("/export.csv", h.exportCSV)
	g.GET("/search", h.searchTrips)
	g.GET("/:id", h.getTrip)
	g.DELETE("/:id", h.deleteTrip)
	g.POST("/:id/regenerate", h.regenerateTrip)
	g.POST("/:id/export", h.exportTrip)
}

func (h *TripHandler) createTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req itinerary.RawTripRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	view, err := h.trips.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return writeTripError(c, view, err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *TripHandler) regenerateTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	tripID, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	view, err := h.trips.Regenerate(c.Request().Context(), user.ID, tripID)
	if err != nil {
		return writeTripError(c, view, err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *TripHandler) listTrips(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	result, err := h.trips.List(c.Request().Context(), user.ID, parseStatuses(c), limit, offset)
	if err != nil {
		return writeTripError(c, nil, err)
	}
	return c.JSON(http.StatusOK, util.Page("trips", result.Items, result.Total, result.Limit, result.Offset))
}

func (h *TripHandler) getTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	tripID, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	view, err := h.trips.Get(c.Request().Context(), user.ID, tripID)
	if err != nil {
		return writeTripError(c, nil, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *TripHandler) deleteTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	tripID, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	if err := h.trips.Delete(c.Request().Context(), user.ID, tripID); err != nil {
		return writeTripError(c, nil, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"trip_id": tripID,
		"message": "Trip deleted",
	})
}

func (h *TripHandler) exportCSV(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	data, err := h.trips.ExportCSV(c.Request().Context(), user.ID)
	if err != nil {
		return writeTripError(c, nil, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="trips.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *TripHandler) exportTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	tripID, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	pageURL := fmt.Sprintf("%s/trips/%s", h.publicBaseURL, tripID)
	url, err := h.trips.ExportHTML(c.Request().Context(), user.ID, tripID, pageURL)
	if err != nil {
		return writeTripError(c, nil, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"trip_id": tripID,
		"url":     url,
	})
}

func (h *TripHandler) searchTrips(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	limit := 0
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	results, err := h.trips.Search(c.Request().Context(), user.ID, c.QueryParam("q"), limit)
	if err != nil {
		return writeTripError(c, nil, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"results": results,
		"count":   len(results),
	})
}

// writeTripError maps service errors to responses. A failed generation still
// carries the stored error trip, which is returned alongside the message.
func writeTripError(c echo.Context, view *service.TripView, err error) error {
	var (
		validation *service.ValidationError
		upstream   *gemini.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, util.Envelope{"error": validation.Message, "field": validation.Field})
	case errors.Is(err, service.ErrTripNotFound):
		return c.JSON(http.StatusNotFound, util.Error("trip not found"))
	case errors.Is(err, gemini.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, util.Error("trip generation is not configured"))
	case errors.Is(err, service.ErrExportUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.Error("itinerary export is unavailable"))
	case errors.Is(err, service.ErrSearchUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.Error("trip search is unavailable"))
	case errors.Is(err, service.ErrTripIncomplete):
		return c.JSON(http.StatusConflict, util.Error("trip has no itinerary yet"))
	case errors.Is(err, service.ErrTripNotPending):
		return c.JSON(http.StatusConflict, util.Error("trip was already completed"))
	case view != nil:
		message := view.Summary.Error
		if message == "" {
			message = "trip generation failed"
		}
		if errors.As(err, &upstream) {
			c.Logger().Errorf("trip %s: upstream status %d", view.Summary.ID, upstream.Status)
		}
		return c.JSON(http.StatusBadGateway, util.Envelope{"error": message, "trip": view.Summary})
	default:
		c.Logger().Errorf("trip request: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to process trip"))
	}
}

func parseTripID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return uuid.Nil, errors.New("trip id must be a valid UUID")
	}
	return id, nil
}

// parseStatuses accepts repeated and comma-separated status parameters.
func parseStatuses(c echo.Context) []domain.TripStatus {
	var raw []string
	for _, value := range c.QueryParams()["status"] {
		raw = append(raw, strings.Split(value, ",")...)
	}
	cleaned := lo.Compact(lo.Map(raw, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	}))
	return lo.Map(lo.Uniq(cleaned), func(s string, _ int) domain.TripStatus {
		return domain.TripStatus(s)
	})
}

func parsePagination(c echo.Context, defaultLimit, defaultOffset int) (int, int) {
	limit := defaultLimit
	offset := defaultOffset
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
