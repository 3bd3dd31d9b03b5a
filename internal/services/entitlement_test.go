package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
)

func TestHasVideoAccessViaEnrollment(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", true)
	mem.enroll(user.ID, "course-1")

	ok, err := svc.HasVideoAccess(ctx, user.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasVideoAccessViaDirectGrantOnly(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", true)
	require.NoError(t, mem.UpsertVideoGrant(ctx, user.ID, video.ID, "admin"))

	ok, err := svc.HasVideoAccess(ctx, user.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Revoking the only grant removes access.
	require.NoError(t, svc.RevokeVideoAccess(ctx, user.ID, video.ID))
	ok, err = svc.HasVideoAccess(ctx, user.ID, video.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokedGrantStillCoveredByEnrollment(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", true)
	mem.enroll(user.ID, "course-1")
	require.NoError(t, mem.UpsertVideoGrant(ctx, user.ID, video.ID, "admin"))

	require.NoError(t, svc.RevokeVideoAccess(ctx, user.ID, video.ID))

	ok, err := svc.HasVideoAccess(ctx, user.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, ok, "enrollment-derived access must survive direct-grant revocation")
}

func TestHasVideoAccessDenied(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", true)

	ok, err := svc.HasVideoAccess(ctx, user.ID, video.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasVideoAccessMissingAssetPropagatesNotFound(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)

	_, err := svc.HasVideoAccess(ctx, user.ID, "no-such-video")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestAuthorizeVideoPlaybackDenied(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", true)

	_, err := svc.AuthorizeVideoPlayback(ctx, user.ID, video.ID)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))
}

func TestAuthorizeVideoPlaybackUnpublished(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", false)
	mem.enroll(user.ID, "course-1")

	// Authorized but unpublished is a distinct BadRequest, not a denial and
	// not a silent empty response.
	_, err := svc.AuthorizeVideoPlayback(ctx, user.ID, video.ID)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindBadRequest, taxErr.Kind)
}

func TestAccessibleVideosDirectOverwritesEnrollment(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	video := mem.addVideo("course-1", true)
	mem.enroll(user.ID, "course-1")
	require.NoError(t, mem.UpsertVideoGrant(ctx, user.ID, video.ID, "admin"))

	videos, err := svc.AccessibleVideos(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1, "same asset must appear exactly once")
	assert.Equal(t, video.ID, videos[0].ID)
	assert.Equal(t, models.AccessTypeDirect, videos[0].AccessType,
		"direct grant wins the tag on collision")
}

func TestAccessibleVideosSkipsUnpublished(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	published := mem.addVideo("course-1", true)
	unpublished := mem.addVideo("course-1", false)
	mem.enroll(user.ID, "course-1")
	require.NoError(t, mem.UpsertVideoGrant(ctx, user.ID, unpublished.ID, "admin"))

	videos, err := svc.AccessibleVideos(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, published.ID, videos[0].ID)
	assert.Equal(t, models.AccessTypeEnrollment, videos[0].AccessType)
}

func TestGrantAudioAccessRequiresEnrollment(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)
	audio := mem.addAudio("course-1", true)

	err := svc.GrantAudioAccess(ctx, "admin", user.ID, audio.ID)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindBadRequest, taxErr.Kind)

	mem.enroll(user.ID, "course-1")
	require.NoError(t, svc.GrantAudioAccess(ctx, "admin", user.ID, audio.ID))

	ok, err := svc.HasAudioAccess(ctx, user.ID, audio.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrantVideoAccessMissingVideo(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	svc := NewEntitlementService(mem, mem)

	user := mem.addUser(models.UserRoleUser, true)

	err := svc.GrantVideoAccess(ctx, "admin", user.ID, "no-such-video")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
