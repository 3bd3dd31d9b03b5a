package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/db"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

type UploadHandler struct {
	log *logger.Logger
	acl types.ObjectCannedACL
}

func NewUploadHandler(acl types.ObjectCannedACL) *UploadHandler {
	if acl == "" {
		acl = types.ObjectCannedACLPrivate
	}
	return &UploadHandler{
		log: logger.New("upload_handler"),
		acl: acl,
	}
}

// UploadFile stores a media file in the object store and records it. The
// returned file ID is what course content rows reference via Path.
// @Summary Upload a file
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} map[string]string "File uploaded successfully"
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/files/upload [post]
func (h *UploadHandler) UploadFile(c echo.Context) error {
	contentType := c.Request().Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Content-Type must be multipart/form-data",
		})
	}

	storage := GetStorageHandler()
	if storage == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Storage handler not configured",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.log.Error("Failed to get file from request", err)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "No file provided",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to read file",
		})
	}

	key, err := storage.UploadFile(c.Request().Context(), content, file.Filename, h.acl, file.Header.Get("Content-Type"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to upload file",
		})
	}

	h.log.Success("File uploaded successfully: %s", key)

	fileModel := &models.File{
		UserID: middleware.GetUserID(c),
		Path:   key,
		Name:   file.Filename,
		Size:   file.Size,
		Type:   file.Header.Get("Content-Type"),
	}

	if err := db.GetDB().Create(fileModel).Error; err != nil {
		h.log.Error("Failed to insert file into database", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to insert file into database",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "File uploaded successfully",
		"file":    fileModel.ID,
		"path":    fileModel.Path,
	})
}
