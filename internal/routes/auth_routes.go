package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/handlers"
)

func SetupAuthRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg.JWT.Secret)

	base := e.Group("/api/v1")

	// Public auth routes group
	auth := base.Group("/auth")
	users := base.Group("/users")

	// Public routes (no auth required)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected user routes (require authentication)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	users.Use(authMiddleware.Middleware())

	users.GET("/me", authHandler.GetMe)

	// Role management is admin-only
	roleGroup := users.Group("")
	roleGroup.Use(middleware.RequireRoles())
	roleGroup.PUT("/:id/role", authHandler.UpdateUserRole)
}
