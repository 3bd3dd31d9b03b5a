package api

import (
	"net/http"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/registry"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/routes"

	_ "github.com/arashioz/man-haghighi-mono-repo-sub001/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Media Hub API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	api := s.echo.Group("/api/v1")
	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret)
	api.Use(auth.Middleware())

	// Generic CRUD routes for catalog models
	registry.RegisterCRUDRoutes(api, s.db)

	routes.SetupMediaRoutes(api, s.db, s.config)
	routes.SetupSalesRoutes(api, s.db, s.config)
	routes.SetupUploadRoutes(api, s.config)
}
