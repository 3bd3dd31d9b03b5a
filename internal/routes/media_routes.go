package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/handlers"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/tasks"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// SetupMediaRoutes wires the entitlement-gated media routes: listings,
// stream URLs, byte streams, direct grants and enrollment.
func SetupMediaRoutes(api *echo.Group, db *gorm.DB, cfg *config.Config) {
	log := logger.New("media_routes")

	st := store.New(db)
	entitlements := services.NewEntitlementService(st, st)
	enrollments := services.NewEnrollmentService(st, st)

	taskClient := tasks.NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)

	mediaHandler := handlers.NewMediaHandler(entitlements, cfg)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollments, st, taskClient)

	adminOnly := middleware.RequireRoles()

	// Videos
	videos := api.Group("/videos")
	videos.GET("/my", mediaHandler.ListMyVideos)
	videos.GET("/:id/stream-url", mediaHandler.GetVideoStreamURL)
	videos.GET("/:id/stream", mediaHandler.StreamVideo)

	videoAccess := videos.Group("/:id/access")
	videoAccess.Use(adminOnly)
	videoAccess.POST("", mediaHandler.GrantVideoAccess)
	videoAccess.DELETE("", mediaHandler.RevokeVideoAccess)

	// Audios
	audios := api.Group("/audios")
	audios.GET("/my", mediaHandler.ListMyAudios)
	audios.GET("/:id/stream-url", mediaHandler.GetAudioStreamURL)
	audios.GET("/:id/stream", mediaHandler.StreamAudio)

	audioAccess := audios.Group("/:id/access")
	audioAccess.Use(adminOnly)
	audioAccess.POST("", mediaHandler.GrantAudioAccess)
	audioAccess.DELETE("", mediaHandler.RevokeAudioAccess)

	// Enrollment
	api.POST("/courses/:id/enroll", enrollmentHandler.Enroll)
	api.GET("/enrollments/my", enrollmentHandler.ListMyEnrollments)

	log.Success("Media routes initialized successfully")
}
