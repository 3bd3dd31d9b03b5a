package routes

import (
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/handlers"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

func SetupUploadRoutes(api *echo.Group, cfg *config.Config) {
	log := logger.New("upload_routes")

	// Media files never get public ACLs; access always goes through the
	// entitlement gate or a presigned URL.
	uploadHandler := handlers.NewUploadHandler(
		types.ObjectCannedACLPrivate,
	)

	fileGroup := api.Group("/files")
	fileGroup.Use(middleware.RequireRoles())

	fileGroup.POST("/upload", uploadHandler.UploadFile)

	log.Success("Upload routes initialized successfully")
}
