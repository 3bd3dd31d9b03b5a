package registry

import (
	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/controllers"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"

	"gorm.io/gorm"
)

// RegisterCRUDRoutes wires generic CRUD routes for the catalog models.
// Reads are open to any authenticated user; writes are admin-only except
// workshops, which sales managers also own.
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	adminOnly := middleware.RequireRoles()
	managerOrAdmin := middleware.RequireRoles(models.UserRoleSalesManager)

	// Courses
	courseService := services.NewBaseService(db, models.Course{})
	courseController := controllers.NewBaseController(courseService)
	courseGroup := g.Group("/courses")
	courseGroup.GET("", courseController.List)
	courseGroup.GET("/:id", courseController.Get)

	courseWriteGroup := courseGroup.Group("")
	courseWriteGroup.Use(adminOnly)
	courseWriteGroup.POST("", courseController.Create)
	courseWriteGroup.PUT("/:id", courseController.Update)
	courseWriteGroup.DELETE("/:id", courseController.Delete)

	// Articles
	articleService := services.NewBaseService(db, models.Article{})
	articleController := controllers.NewBaseController(articleService)
	articleGroup := g.Group("/articles")
	articleGroup.GET("", articleController.List)
	articleGroup.GET("/:id", articleController.Get)

	articleWriteGroup := articleGroup.Group("")
	articleWriteGroup.Use(adminOnly)
	articleWriteGroup.POST("", articleController.Create)
	articleWriteGroup.PUT("/:id", articleController.Update)
	articleWriteGroup.DELETE("/:id", articleController.Delete)

	// Podcasts
	podcastService := services.NewBaseService(db, models.Podcast{})
	podcastController := controllers.NewBaseController(podcastService)
	podcastGroup := g.Group("/podcasts")
	podcastGroup.GET("", podcastController.List)
	podcastGroup.GET("/:id", podcastController.Get)

	podcastWriteGroup := podcastGroup.Group("")
	podcastWriteGroup.Use(adminOnly)
	podcastWriteGroup.POST("", podcastController.Create)
	podcastWriteGroup.PUT("/:id", podcastController.Update)
	podcastWriteGroup.DELETE("/:id", podcastController.Delete)

	// Sliders
	sliderService := services.NewBaseService(db, models.Slider{})
	sliderController := controllers.NewBaseController(sliderService)
	sliderGroup := g.Group("/sliders")
	sliderGroup.GET("", sliderController.List)

	sliderWriteGroup := sliderGroup.Group("")
	sliderWriteGroup.Use(adminOnly)
	sliderWriteGroup.POST("", sliderController.Create)
	sliderWriteGroup.PUT("/:id", sliderController.Update)
	sliderWriteGroup.DELETE("/:id", sliderController.Delete)

	// Workshops
	workshopService := services.NewBaseService(db, models.Workshop{})
	workshopController := controllers.NewBaseController(workshopService)
	workshopGroup := g.Group("/workshops")
	workshopGroup.GET("", workshopController.List)
	workshopGroup.GET("/:id", workshopController.Get)

	workshopWriteGroup := workshopGroup.Group("")
	workshopWriteGroup.Use(managerOrAdmin)
	workshopWriteGroup.POST("", workshopController.Create)
	workshopWriteGroup.PUT("/:id", workshopController.Update)
	workshopWriteGroup.DELETE("/:id", workshopController.Delete)

	// Files (metadata; bytes go through the upload route)
	fileService := services.NewBaseService(db, models.File{})
	fileController := controllers.NewBaseController(fileService)
	fileGroup := g.Group("/files")
	fileGroup.GET("", fileController.List)
	fileGroup.GET("/:id", fileController.Get)
}
