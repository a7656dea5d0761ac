package http

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/util"
)

// RegisterSwagger serves the YAML API description at specPath as JSON under
// /swagger/doc.json, next to the Swagger UI. The file is converted once.
func RegisterSwagger(e *echo.Echo, specPath string) {
	var (
		once     sync.Once
		jsonSpec []byte
		loadErr  error
	)
	load := func() {
		data, err := os.ReadFile(specPath)
		if err != nil {
			loadErr = fmt.Errorf("load swagger spec: %w", err)
			return
		}
		jsonSpec, loadErr = yaml.YAMLToJSON(data)
		if loadErr != nil {
			loadErr = fmt.Errorf("convert swagger spec: %w", loadErr)
		}
	}

	e.GET("/swagger/doc.json", func(c echo.Context) error {
		once.Do(load)
		if loadErr != nil {
			c.Logger().Errorf("%v", loadErr)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
