package services

import (
	"context"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	console "github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// EntitlementService decides whether a user may play a media asset and
// computes the set of assets a user may see. Authorization is the union of
// two independent, additive mechanisms: direct per-asset grants and
// course-enrollment-derived access.
type EntitlementService struct {
	catalog store.AssetCatalog
	grants  store.GrantStore
	log     *console.Logger
}

func NewEntitlementService(catalog store.AssetCatalog, grants store.GrantStore) *EntitlementService {
	return &EntitlementService{
		catalog: catalog,
		grants:  grants,
		log:     console.New("entitlement_service"),
	}
}

// HasVideoAccess reports whether the user may play the video. Direct grants
// win first; otherwise enrollment in the owning course decides. A missing
// video propagates as NotFound, never as a denial.
func (s *EntitlementService) HasVideoAccess(ctx context.Context, userID, videoID string) (bool, error) {
	video, err := s.catalog.VideoByID(ctx, videoID)
	if err != nil {
		return false, err
	}

	granted, err := s.grants.HasVideoGrant(ctx, userID, videoID)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}

	return s.grants.IsEnrolled(ctx, userID, video.CourseID)
}

func (s *EntitlementService) HasAudioAccess(ctx context.Context, userID, audioID string) (bool, error) {
	audio, err := s.catalog.AudioByID(ctx, audioID)
	if err != nil {
		return false, err
	}

	granted, err := s.grants.HasAudioGrant(ctx, userID, audioID)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}

	return s.grants.IsEnrolled(ctx, userID, audio.CourseID)
}

// AuthorizeVideoPlayback runs the full playback gate: entitlement first
// (Forbidden, without revealing which mechanism was missing), then the
// published flag (BadRequest). Only then is the asset handed out.
func (s *EntitlementService) AuthorizeVideoPlayback(ctx context.Context, userID, videoID string) (*models.Video, error) {
	video, err := s.catalog.VideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.HasVideoAccess(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.Forbidden("you do not have access to this video")
	}

	if !video.Published {
		return nil, errs.BadRequest("video is not published")
	}
	return video, nil
}

func (s *EntitlementService) AuthorizeAudioPlayback(ctx context.Context, userID, audioID string) (*models.Audio, error) {
	audio, err := s.catalog.AudioByID(ctx, audioID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.HasAudioAccess(ctx, userID, audioID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.Forbidden("you do not have access to this audio")
	}

	if !audio.Published {
		return nil, errs.BadRequest("audio is not published")
	}
	return audio, nil
}

// AccessibleVideos returns every published video the user may see, tagged by
// how access was obtained. Enrollment-derived entries are inserted first;
// direct grants are merged in afterwards and overwrite the tag on collision,
// so a video covered by both mechanisms always reads as a direct grant.
func (s *EntitlementService) AccessibleVideos(ctx context.Context, userID string) ([]models.Video, error) {
	order := make([]string, 0)
	byID := make(map[string]models.Video)

	enrollments, err := s.grants.EnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, enrollment := range enrollments {
		videos, err := s.catalog.PublishedVideosByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		for _, video := range videos {
			video.AccessType = models.AccessTypeEnrollment
			if _, seen := byID[video.ID]; !seen {
				order = append(order, video.ID)
			}
			byID[video.ID] = video
		}
	}

	directGrants, err := s.grants.VideoGrantsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, grant := range directGrants {
		video, err := s.catalog.VideoByID(ctx, grant.VideoID)
		if err != nil {
			if errs.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !video.Published {
			continue
		}
		video.AccessType = models.AccessTypeDirect
		if _, seen := byID[video.ID]; !seen {
			order = append(order, video.ID)
		}
		byID[video.ID] = *video
	}

	result := make([]models.Video, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, nil
}

func (s *EntitlementService) AccessibleAudios(ctx context.Context, userID string) ([]models.Audio, error) {
	order := make([]string, 0)
	byID := make(map[string]models.Audio)

	enrollments, err := s.grants.EnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, enrollment := range enrollments {
		audios, err := s.catalog.PublishedAudiosByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		for _, audio := range audios {
			audio.AccessType = models.AccessTypeEnrollment
			if _, seen := byID[audio.ID]; !seen {
				order = append(order, audio.ID)
			}
			byID[audio.ID] = audio
		}
	}

	directGrants, err := s.grants.AudioGrantsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, grant := range directGrants {
		audio, err := s.catalog.AudioByID(ctx, grant.AudioID)
		if err != nil {
			if errs.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !audio.Published {
			continue
		}
		audio.AccessType = models.AccessTypeDirect
		if _, seen := byID[audio.ID]; !seen {
			order = append(order, audio.ID)
		}
		byID[audio.ID] = *audio
	}

	result := make([]models.Audio, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, nil
}

// GrantVideoAccess upserts a direct grant. The target user must already hold
// an enrollment in the owning course.
func (s *EntitlementService) GrantVideoAccess(ctx context.Context, grantedBy, userID, videoID string) error {
	video, err := s.catalog.VideoByID(ctx, videoID)
	if err != nil {
		return err
	}

	enrolled, err := s.grants.IsEnrolled(ctx, userID, video.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return errs.BadRequest("user is not enrolled in the owning course")
	}

	return s.grants.UpsertVideoGrant(ctx, userID, videoID, grantedBy)
}

func (s *EntitlementService) GrantAudioAccess(ctx context.Context, grantedBy, userID, audioID string) error {
	audio, err := s.catalog.AudioByID(ctx, audioID)
	if err != nil {
		return err
	}

	enrolled, err := s.grants.IsEnrolled(ctx, userID, audio.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return errs.BadRequest("user is not enrolled in the owning course")
	}

	return s.grants.UpsertAudioGrant(ctx, userID, audioID, grantedBy)
}

// RevokeVideoAccess removes the direct grant only; enrollment-derived access
// is untouched, so a revoked user may still play through their enrollment.
func (s *EntitlementService) RevokeVideoAccess(ctx context.Context, userID, videoID string) error {
	if _, err := s.catalog.VideoByID(ctx, videoID); err != nil {
		return err
	}
	return s.grants.RevokeVideoGrant(ctx, userID, videoID)
}

func (s *EntitlementService) RevokeAudioAccess(ctx context.Context, userID, audioID string) error {
	if _, err := s.catalog.AudioByID(ctx, audioID); err != nil {
		return err
	}
	return s.grants.RevokeAudioGrant(ctx, userID, audioID)
}
