package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"golang.org/x/time/rate"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/validator"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/routes"

	console "github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config
	db     *gorm.DB
}

var log = console.New("API-Server")

// NewServer @title Media Hub API
// @version 1.0
// @description Course media entitlement and streaming API.
// @host localhost:8080
// @BasePath /api/v1
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	e := echo.New()

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength, "Range"},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		// Compressing a seekable byte stream would break Range offsets.
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Range") != "" ||
				c.Path() == "/api/v1/videos/:id/stream" ||
				c.Path() == "/api/v1/audios/:id/stream"
		},
	}))
	e.Use(middleware.BodyLimit("50M"))

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	// Create server instance
	s := &Server{
		echo:   e,
		config: cfg,
		db:     db,
	}

	if err := models.CreateAdminFromEnv(db, cfg); err != nil {
		log.Warn("Warning: Failed to create admin account: %v", err)
	} else {
		log.Success("Admin account ready")
	}

	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	// Admin panel over the GORM models
	gormIntegrator := admingorm.NewIntegrator(db)
	echoIntegrator := adminecho.NewIntegrator(e.Group(""))

	permissionChecker := func(
		request admin.PermissionRequest, ctx interface{},
	) (bool, error) {
		return true, nil
	}

	adminPanel, err := admin.NewPanel(
		gormIntegrator, echoIntegrator, permissionChecker, nil,
	)
	if err != nil {
		err := log.Error("Failed to create admin panel", err)
		if err != nil {
			return nil
		}
	}

	_, err = adminPanel.RegisterApp(
		"MediaHub",
		"Media Hub Admin Panel",
		nil,
	)
	if err != nil {
		err := log.Error("Failed to register admin app", err)
		if err != nil {
			return nil
		}
	}

	routes.SetupAuthRoutes(s.echo, s.db, s.config)

	// Register routes
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Custom HTTP error handler. Domain errors carry their own status; anything
// else falls back to echo semantics.
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
	)

	var domainErr *errs.Error
	switch e := err.(type) {
	case *echo.HTTPError:
		code = e.Code
		message = e.Message
	case validator.ValidationErrors:
		code = http.StatusBadRequest
		message = formatValidationErrors(e)
	default:
		if errors.As(err, &domainErr) {
			code = domainErr.StatusCode()
			message = domainErr.Message
			if code == http.StatusInternalServerError {
				// Never leak storage internals to the client.
				log.Error("Storage failure: %v", domainErr)
				message = "Internal server error"
			}
		} else {
			message = http.StatusText(code)
		}
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error": message,
				"code":  code,
				"time":  time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}

// formatValidationErrors formats validation errors into a map
func formatValidationErrors(errors validator.ValidationErrors) map[string]string {
	errMap := make(map[string]string)
	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "url":
			errMap[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "user_role":
			errMap[field] = fmt.Sprintf("%s must be one of: ADMIN, SALES_MANAGER, SALES_PERSON, USER", field)
		case "grant_state":
			errMap[field] = fmt.Sprintf("%s must be one of: ACTIVE, REVOKED", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, tag)
		}
	}
	return errMap
}
