package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func serve(e *echo.Echo, path string) int {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestApplyRoutes(t *testing.T) {
	RegisterGET("/registry/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	// Routes mount on every instance they are applied to.
	for i := 0; i < 2; i++ {
		e := echo.New()
		ApplyRoutes(e, nil)
		if code := serve(e, "/registry/ping"); code != http.StatusNoContent {
			t.Fatalf("instance %d: status = %d, want 204", i, code)
		}
	}
}

func TestApplyModules(t *testing.T) {
	RegisterModule(func(g *echo.Group, _ *gorm.DB) {
		g.GET("/bins", func(c echo.Context) error { return c.JSON(http.StatusOK, []string{"A-01"}) })
	})

	e := echo.New()
	ApplyModules(e.Group("/api"), nil)
	if code := serve(e, "/api/bins"); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	defer func() {
		if recover() == nil {
			t.Error("want panic when registering after ApplyModules")
		}
	}()
	RegisterModule(func(*echo.Group, *gorm.DB) {})
}
