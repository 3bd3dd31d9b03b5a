package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/httprange"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// streamChunkSize bounds how much of an asset is held in memory at once.
const streamChunkSize = 64 * 1024

// MediaHandler serves stream URLs, the byte streams themselves, and the
// direct-grant admin endpoints for both media kinds. Video and audio share
// one responder: the status and headers branch on Range-header presence the
// same way for both.
type MediaHandler struct {
	entitlements *services.EntitlementService
	basePath     string
	publicURL    string
	log          *logger.Logger
}

func NewMediaHandler(entitlements *services.EntitlementService, cfg *config.Config) *MediaHandler {
	return &MediaHandler{
		entitlements: entitlements,
		basePath:     cfg.Storage.BasePath,
		publicURL:    cfg.Server.PublicURL,
		log:          logger.New("media_handler"),
	}
}

type AccessRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type streamURLResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Duration int64  `json:"duration"`
}

// GetVideoStreamURL hands out a playable URL once the full playback gate
// (entitlement, then published flag) passes.
// @Summary Get a video stream URL
// @Tags media
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} streamURLResponse
// @Failure 400 {object} map[string]string "Not published"
// @Failure 403 {object} map[string]string "No access"
// @Failure 404 {object} map[string]string "Video not found"
// @Router /videos/{id}/stream [get]
func (h *MediaHandler) GetVideoStreamURL(c echo.Context) error {
	userID := middleware.GetUserID(c)
	video, err := h.entitlements.AuthorizeVideoPlayback(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	url, err := h.streamURL(c.Request().Context(), video.Path, "/api/v1/videos/"+video.ID+"/stream")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, streamURLResponse{
		URL:      url,
		MimeType: video.MimeType,
		Size:     video.Size,
		Duration: video.Duration,
	})
}

func (h *MediaHandler) GetAudioStreamURL(c echo.Context) error {
	userID := middleware.GetUserID(c)
	audio, err := h.entitlements.AuthorizeAudioPlayback(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	url, err := h.streamURL(c.Request().Context(), audio.Path, "/api/v1/audios/"+audio.ID+"/stream")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, streamURLResponse{
		URL:      url,
		MimeType: audio.MimeType,
		Size:     audio.Size,
		Duration: audio.Duration,
	})
}

// streamURL prefers a presigned storage URL when a storage handler is
// registered (S3 provider); otherwise the asset streams through this server.
func (h *MediaHandler) streamURL(ctx context.Context, path, localRoute string) (string, error) {
	if storage := GetStorageHandler(); storage != nil {
		return storage.GetSignedURL(ctx, path, time.Hour)
	}
	return h.publicURL + localRoute, nil
}

// StreamVideo serves the asset bytes with seekable partial-content
// semantics.
// @Summary Stream a video
// @Tags media
// @Param id path string true "Video ID"
// @Param Range header string false "Byte range"
// @Success 200 "Full content"
// @Success 206 "Partial content"
// @Failure 403 {object} map[string]string "No access"
// @Failure 404 {object} map[string]string "File missing"
// @Router /videos/{id}/stream [get]
func (h *MediaHandler) StreamVideo(c echo.Context) error {
	userID := middleware.GetUserID(c)
	video, err := h.entitlements.AuthorizeVideoPlayback(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return h.streamFile(c, video.Path, video.MimeType)
}

func (h *MediaHandler) StreamAudio(c echo.Context) error {
	userID := middleware.GetUserID(c)
	audio, err := h.entitlements.AuthorizeAudioPlayback(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return h.streamFile(c, audio.Path, audio.MimeType)
}

// streamFile owns the file handle for the lifetime of the response and
// releases it on every exit path: completion, client disconnect and write
// error alike.
func (h *MediaHandler) streamFile(c echo.Context, path, mimeType string) error {
	file, err := os.Open(filepath.Join(h.basePath, filepath.Clean("/"+path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.NotFound("media file not found")
		}
		return errs.Storage("failed to open media file", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			h.log.Warn("Failed to close media file %s: %v", path, cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return errs.Storage("failed to stat media file", err)
	}
	totalSize := uint64(info.Size())

	rangeHeader := c.Request().Header.Get("Range")
	span, err := httprange.Parse(rangeHeader, totalSize)
	if err != nil {
		return err
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, mimeType)

	if rangeHeader == "" {
		resp.Header().Set(echo.HeaderContentLength, strconv.FormatUint(totalSize, 10))
		resp.WriteHeader(http.StatusOK)
		return h.copySpan(c.Request().Context(), resp, file, totalSize)
	}

	if _, err := file.Seek(int64(span.Start), io.SeekStart); err != nil {
		return errs.Storage("failed to seek media file", err)
	}

	resp.Header().Set("Content-Range", span.ContentRange(totalSize))
	resp.Header().Set("Accept-Ranges", "bytes")
	resp.Header().Set(echo.HeaderContentLength, strconv.FormatUint(span.Length(), 10))
	resp.WriteHeader(http.StatusPartialContent)
	return h.copySpan(c.Request().Context(), resp, file, span.Length())
}

// copySpan forwards exactly length bytes in bounded chunks, bailing out as
// soon as the client goes away.
func (h *MediaHandler) copySpan(ctx context.Context, dst io.Writer, src io.Reader, length uint64) error {
	buf := make([]byte, streamChunkSize)
	remaining := length
	for remaining > 0 {
		select {
		case <-ctx.Done():
			h.log.Info("Stream cancelled with %d bytes remaining", remaining)
			return nil
		default:
		}

		chunk := uint64(len(buf))
		if remaining < chunk {
			chunk = remaining
		}
		n, err := src.Read(buf[:chunk])
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				// Client went away mid-write; the deferred close still runs.
				return nil
			}
			remaining -= uint64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("media read failed: %w", err)
		}
	}
	return nil
}

// ListMyVideos backs the "my media" listing: everything the user may see,
// tagged with how access was obtained.
func (h *MediaHandler) ListMyVideos(c echo.Context) error {
	userID := middleware.GetUserID(c)
	videos, err := h.entitlements.AccessibleVideos(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  videos,
		"total": len(videos),
	})
}

func (h *MediaHandler) ListMyAudios(c echo.Context) error {
	userID := middleware.GetUserID(c)
	audios, err := h.entitlements.AccessibleAudios(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  audios,
		"total": len(audios),
	})
}

// GrantVideoAccess creates (or refreshes) a direct grant for a user.
func (h *MediaHandler) GrantVideoAccess(c echo.Context) error {
	var req AccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := middleware.GetUserID(c)
	if err := h.entitlements.GrantVideoAccess(c.Request().Context(), actorID, req.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "access granted"})
}

func (h *MediaHandler) RevokeVideoAccess(c echo.Context) error {
	var req AccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.entitlements.RevokeVideoAccess(c.Request().Context(), req.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "access revoked"})
}

func (h *MediaHandler) GrantAudioAccess(c echo.Context) error {
	var req AccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actorID := middleware.GetUserID(c)
	if err := h.entitlements.GrantAudioAccess(c.Request().Context(), actorID, req.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "access granted"})
}

func (h *MediaHandler) RevokeAudioAccess(c echo.Context) error {
	var req AccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.entitlements.RevokeAudioAccess(c.Request().Context(), req.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "access revoked"})
}
