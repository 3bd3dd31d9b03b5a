package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
)

// fakeCatalog backs the entitlement service with fixed assets and grants so
// stream behavior can be exercised against real files without a database.
type fakeCatalog struct {
	videos      map[string]*models.Video
	audios      map[string]*models.Audio
	enrollments map[string]bool
	videoGrants map[string]bool
	audioGrants map[string]bool
}

var (
	_ store.AssetCatalog = (*fakeCatalog)(nil)
	_ store.GrantStore   = (*fakeCatalog)(nil)
)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		videos:      make(map[string]*models.Video),
		audios:      make(map[string]*models.Audio),
		enrollments: make(map[string]bool),
		videoGrants: make(map[string]bool),
		audioGrants: make(map[string]bool),
	}
}

func (f *fakeCatalog) VideoByID(ctx context.Context, id string) (*models.Video, error) {
	if v, ok := f.videos[id]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, errs.NotFound("video not found")
}

func (f *fakeCatalog) AudioByID(ctx context.Context, id string) (*models.Audio, error) {
	if a, ok := f.audios[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, errs.NotFound("audio not found")
}

func (f *fakeCatalog) PublishedVideosByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	var out []models.Video
	for _, v := range f.videos {
		if v.CourseID == courseID && v.Published {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeCatalog) PublishedAudiosByCourse(ctx context.Context, courseID string) ([]models.Audio, error) {
	var out []models.Audio
	for _, a := range f.audios {
		if a.CourseID == courseID && a.Published {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeCatalog) VideosByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	var out []models.Video
	for _, v := range f.videos {
		if v.CourseID == courseID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeCatalog) HasVideoGrant(ctx context.Context, userID, videoID string) (bool, error) {
	return f.videoGrants[userID+"|"+videoID], nil
}

func (f *fakeCatalog) HasAudioGrant(ctx context.Context, userID, audioID string) (bool, error) {
	return f.audioGrants[userID+"|"+audioID], nil
}

func (f *fakeCatalog) UpsertVideoGrant(ctx context.Context, userID, videoID, grantedBy string) error {
	f.videoGrants[userID+"|"+videoID] = true
	return nil
}

func (f *fakeCatalog) UpsertAudioGrant(ctx context.Context, userID, audioID, grantedBy string) error {
	f.audioGrants[userID+"|"+audioID] = true
	return nil
}

func (f *fakeCatalog) RevokeVideoGrant(ctx context.Context, userID, videoID string) error {
	delete(f.videoGrants, userID+"|"+videoID)
	return nil
}

func (f *fakeCatalog) RevokeAudioGrant(ctx context.Context, userID, audioID string) error {
	delete(f.audioGrants, userID+"|"+audioID)
	return nil
}

func (f *fakeCatalog) VideoGrantsByUser(ctx context.Context, userID string) ([]models.VideoAccess, error) {
	return nil, nil
}

func (f *fakeCatalog) AudioGrantsByUser(ctx context.Context, userID string) ([]models.AudioAccess, error) {
	return nil, nil
}

func (f *fakeCatalog) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return f.enrollments[userID+"|"+courseID], nil
}

func (f *fakeCatalog) CreateEnrollment(ctx context.Context, enrollment *models.CourseEnrollment) error {
	f.enrollments[enrollment.UserID+"|"+enrollment.CourseID] = true
	return nil
}

func (f *fakeCatalog) EnrollmentsByUser(ctx context.Context, userID string) ([]models.CourseEnrollment, error) {
	return nil, nil
}

// streamFixture provisions one published video backed by a real file whose
// bytes are a deterministic ramp, so partial responses can be checked
// byte for byte.
func streamFixture(t *testing.T) (*MediaHandler, *fakeCatalog, []byte) {
	t.Helper()

	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 251)
	}

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "videos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "videos", "clip.mp4"), content, 0o644))

	catalog := newFakeCatalog()
	video := &models.Video{
		CourseID:  "course-1",
		Path:      "videos/clip.mp4",
		MimeType:  "video/mp4",
		Size:      int64(len(content)),
		Published: true,
	}
	video.ID = "video-1"
	catalog.videos[video.ID] = video
	catalog.enrollments["user-1|course-1"] = true

	cfg := &config.Config{}
	cfg.Storage.BasePath = dir
	cfg.Server.PublicURL = "http://localhost:8080"

	handler := NewMediaHandler(services.NewEntitlementService(catalog, catalog), cfg)
	return handler, catalog, content
}

func newStreamContext(t *testing.T, videoID, userID, rangeHeader string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+videoID+"/stream", nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/videos/:id/stream")
	c.SetParamNames("id")
	c.SetParamValues(videoID)
	c.Set("userID", userID)
	return c, rec
}

func TestStreamVideoFullContent(t *testing.T) {
	handler, _, content := streamFixture(t)

	c, rec := newStreamContext(t, "video-1", "user-1", "")
	require.NoError(t, handler.StreamVideo(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get(echo.HeaderContentLength))
	assert.Equal(t, "video/mp4", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.Equal(content, rec.Body.Bytes()), "full stream must return every byte")
}

func TestStreamVideoPartialContent(t *testing.T) {
	handler, _, content := streamFixture(t)

	c, rec := newStreamContext(t, "video-1", "user-1", "bytes=100-199")
	require.NoError(t, handler.StreamVideo(c))

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "100", rec.Header().Get(echo.HeaderContentLength))
	assert.True(t, bytes.Equal(content[100:200], rec.Body.Bytes()), "partial stream must return exactly the requested span")
}

func TestStreamVideoOpenEndedRange(t *testing.T) {
	handler, _, content := streamFixture(t)

	c, rec := newStreamContext(t, "video-1", "user-1", "bytes=900-")
	require.NoError(t, handler.StreamVideo(c))

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 900-999/1000", rec.Header().Get("Content-Range"))
	assert.True(t, bytes.Equal(content[900:], rec.Body.Bytes()))
}

func TestStreamVideoRangeBeyondSize(t *testing.T) {
	handler, _, _ := streamFixture(t)

	c, _ := newStreamContext(t, "video-1", "user-1", "bytes=2000-")
	err := handler.StreamVideo(c)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindRangeNotSatisfiable, taxErr.Kind)
}

func TestStreamVideoMissingFile(t *testing.T) {
	handler, catalog, _ := streamFixture(t)
	catalog.videos["video-1"].Path = "videos/gone.mp4"

	c, _ := newStreamContext(t, "video-1", "user-1", "")
	err := handler.StreamVideo(c)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err), "a dangling path is a 404, not a 500")
}

func TestStreamVideoDenied(t *testing.T) {
	handler, _, _ := streamFixture(t)

	c, _ := newStreamContext(t, "video-1", "stranger", "")
	err := handler.StreamVideo(c)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))
}

func TestStreamVideoUnpublished(t *testing.T) {
	handler, catalog, _ := streamFixture(t)
	catalog.videos["video-1"].Published = false

	c, _ := newStreamContext(t, "video-1", "user-1", "")
	err := handler.StreamVideo(c)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindBadRequest, taxErr.Kind, "unpublished is a 400, distinct from the 403 denial")
}

func TestStreamAudioSharesRangeBranch(t *testing.T) {
	handler, catalog, _ := streamFixture(t)

	content := []byte("0123456789abcdef")
	require.NoError(t, os.MkdirAll(filepath.Join(handler.basePath, "audios"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(handler.basePath, "audios", "track.mp3"), content, 0o644))

	audio := &models.Audio{
		CourseID:  "course-1",
		Path:      "audios/track.mp3",
		MimeType:  "audio/mpeg",
		Size:      int64(len(content)),
		Published: true,
	}
	audio.ID = "audio-1"
	catalog.audios[audio.ID] = audio

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audios/audio-1/stream", nil)
	req.Header.Set("Range", "bytes=4-7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/audios/:id/stream")
	c.SetParamNames("id")
	c.SetParamValues("audio-1")
	c.Set("userID", "user-1")

	require.NoError(t, handler.StreamAudio(c))

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 4-7/16", rec.Header().Get("Content-Range"))
	assert.Equal(t, "audio/mpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "4567", rec.Body.String())
}

func TestGetVideoStreamURLLocalProvider(t *testing.T) {
	handler, _, _ := streamFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/video-1/stream-url", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/videos/:id/stream-url")
	c.SetParamNames("id")
	c.SetParamValues("video-1")
	c.Set("userID", "user-1")

	require.NoError(t, handler.GetVideoStreamURL(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp streamURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "http://localhost:8080/api/v1/videos/video-1/stream", resp.URL)
	assert.Equal(t, "video/mp4", resp.MimeType)
	assert.Equal(t, int64(1000), resp.Size)
}
