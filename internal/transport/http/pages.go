package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/itinerary"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/service"
)

var messageTemplate = template.Must(template.New("message").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: #f3f4f6; color: #111827; }
main { max-width: 560px; margin: 80px auto; padding: 24px; background: #fff; border-radius: 16px; border: 1px solid #e5e7eb; text-align: center; }
</style>
</head>
<body>
<main>
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
</main>
</body>
</html>`))

// RegisterPages serves the browser view of a single trip. Share links point
// at publicBaseURL, never at the request's Host header.
func RegisterPages(e *echo.Echo, auth Authenticator, trips TripAPI, publicBaseURL string) {
	publicBaseURL = strings.TrimRight(publicBaseURL, "/")
	e.GET("/trips/:id", func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.HTML(http.StatusUnauthorized, messagePage("Unauthorized", "authentication required"))
		}
		tripID, err := parseTripID(c)
		if err != nil {
			return c.HTML(http.StatusBadRequest, messagePage("Bad Request", err.Error()))
		}

		view, err := trips.Get(c.Request().Context(), user.ID, tripID)
		if err != nil {
			if errors.Is(err, service.ErrTripNotFound) {
				return c.HTML(http.StatusNotFound, messagePage("Not Found", "This trip does not exist or is not yours."))
			}
			c.Logger().Errorf("trip page: %v", err)
			return c.HTML(http.StatusInternalServerError, messagePage("Error", "The trip could not be loaded."))
		}

		pageURL := fmt.Sprintf("%s/trips/%s", publicBaseURL, tripID)
		page, err := itinerary.RenderPage(view.Summary, pageURL)
		if err != nil {
			c.Logger().Errorf("render trip page: %v", err)
			return c.HTML(http.StatusInternalServerError, messagePage("Error", "The trip could not be displayed."))
		}
		return c.HTMLBlob(http.StatusOK, page)
	}, RequirePageAuth(auth))
}

func messagePage(title, message string) string {
	var buf bytes.Buffer
	if err := messageTemplate.Execute(&buf, struct{ Title, Message string }{title, message}); err != nil {
		return template.HTMLEscapeString(message)
	}
	return buf.String()
}
