package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/handlers"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// SetupSalesRoutes wires the sales hierarchy routes: team membership,
// salesperson availability and per-workshop access.
func SetupSalesRoutes(api *echo.Group, db *gorm.DB, cfg *config.Config) {
	log := logger.New("sales_routes")

	st := store.New(db)
	salesHandler := handlers.NewSalesHandler(services.NewSalesTeamService(st))

	managerOnly := middleware.RequireRoles(models.UserRoleSalesManager)

	teams := api.Group("/sales-teams")
	teams.Use(managerOnly)
	teams.POST("/:id/members", salesHandler.AssignMember)
	teams.DELETE("/:id/members/:salesPersonId", salesHandler.UnassignMember)

	persons := api.Group("/sales-persons")
	persons.Use(managerOnly)
	persons.GET("/available", salesHandler.ListAvailableSalesPersons)

	workshopAccess := api.Group("/workshops/:id/access")
	workshopAccess.Use(managerOnly)
	workshopAccess.POST("", salesHandler.GrantWorkshopAccess)
	workshopAccess.DELETE("/:salesPersonId", salesHandler.RevokeWorkshopAccess)

	myWorkshops := api.Group("/workshops/my")
	myWorkshops.Use(middleware.RequireRoles(models.UserRoleSalesPerson, models.UserRoleSalesManager))
	myWorkshops.GET("", salesHandler.ListMyWorkshops)

	log.Success("Sales routes initialized successfully")
}
