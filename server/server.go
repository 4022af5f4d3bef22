// Package server assembles the HTTP server: middleware, error handling and registered routes.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/config"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
)

// HeaderDuration carries the handler time in milliseconds.
const HeaderDuration = "X-Request-Duration-ms"

// New builds the echo instance with every registered root route and /api module applied.
func New(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.HTTPErrorHandler = response.ErrorHandler(logger)
	e.Validator = validate.New(cfg.PhoneRegion)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CorsOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderXRequestID, echo.HeaderContentDisposition, HeaderDuration},
	}))
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(RequestLogger(logger))
	e.Use(Duration())

	e.Static(cfg.MediaURL, cfg.MediaDir)
	api.ApplyRoutes(e, db)
	apiGroup := e.Group("/api", auth.Middleware(db))
	api.ApplyModules(apiGroup, db)
	return e
}

// Duration sets the X-Request-Duration-ms header right before the response is written.
func Duration() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				c.Response().Header().Set(HeaderDuration, strconv.FormatInt(time.Since(start).Milliseconds(), 10))
			})
			return next(c)
		}
	}
}

// RequestLogger writes one logrus entry per request.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
				"remote_ip":  v.RemoteIP,
			}
			if u := auth.CurrentUser(c); u != nil {
				fields["user_id"] = u.ID
			}
			entry := logger.WithFields(fields)
			switch {
			case v.Status >= http.StatusInternalServerError:
				entry.WithError(v.Error).Error("request failed")
			case v.Status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}

// Run serves e on addr until SIGINT/SIGTERM, then drains in-flight requests.
func Run(e *echo.Echo, addr string, logger *logrus.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("server: listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("server: shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
