package store

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
)

// Store is the GORM-backed implementation of AssetCatalog, GrantStore and
// SalesStore.
type Store struct {
	db *gorm.DB
}

var (
	_ AssetCatalog = (*Store)(nil)
	_ GrantStore   = (*Store)(nil)
	_ SalesStore   = (*Store)(nil)
)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translate maps storage errors onto the taxonomy: missing rows become
// NotFound with the given message, anything else is a storage failure and
// must never masquerade as a denial.
func translate(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(notFoundMsg)
	}
	return errs.Storage("storage query failed", err)
}

// --- AssetCatalog ---

func (s *Store) VideoByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&video).Error; err != nil {
		return nil, translate(err, "video not found")
	}
	return &video, nil
}

func (s *Store) AudioByID(ctx context.Context, id string) (*models.Audio, error) {
	var audio models.Audio
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&audio).Error; err != nil {
		return nil, translate(err, "audio not found")
	}
	return &audio, nil
}

func (s *Store) PublishedVideosByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	var videos []models.Video
	if err := s.db.WithContext(ctx).
		Where("course_id = ? AND published = ? AND is_deleted = ?", courseID, true, false).
		Order("display_order asc").
		Find(&videos).Error; err != nil {
		return nil, errs.Storage("failed to list course videos", err)
	}
	return videos, nil
}

func (s *Store) PublishedAudiosByCourse(ctx context.Context, courseID string) ([]models.Audio, error) {
	var audios []models.Audio
	if err := s.db.WithContext(ctx).
		Where("course_id = ? AND published = ? AND is_deleted = ?", courseID, true, false).
		Order("display_order asc").
		Find(&audios).Error; err != nil {
		return nil, errs.Storage("failed to list course audios", err)
	}
	return audios, nil
}

func (s *Store) VideosByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	var videos []models.Video
	if err := s.db.WithContext(ctx).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("display_order asc").
		Find(&videos).Error; err != nil {
		return nil, errs.Storage("failed to list course videos", err)
	}
	return videos, nil
}

// --- GrantStore: direct grants ---

func (s *Store) HasVideoGrant(ctx context.Context, userID, videoID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.VideoAccess{}).
		Where("user_id = ? AND video_id = ? AND is_deleted = ?", userID, videoID, false).
		Count(&count).Error; err != nil {
		return false, errs.Storage("failed to check video grant", err)
	}
	return count > 0, nil
}

func (s *Store) HasAudioGrant(ctx context.Context, userID, audioID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AudioAccess{}).
		Where("user_id = ? AND audio_id = ? AND is_deleted = ?", userID, audioID, false).
		Count(&count).Error; err != nil {
		return false, errs.Storage("failed to check audio grant", err)
	}
	return count > 0, nil
}

// UpsertVideoGrant reuses a revoked row when one exists so the uniqueness
// constraint on (user, video) holds across grant/revoke cycles.
func (s *Store) UpsertVideoGrant(ctx context.Context, userID, videoID, grantedBy string) error {
	var grant models.VideoAccess
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		grant = models.VideoAccess{UserID: userID, VideoID: videoID, GrantedBy: grantedBy}
		if err := s.db.WithContext(ctx).Create(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("video grant already exists")
			}
			return errs.Storage("failed to create video grant", err)
		}
		return nil
	}
	if err != nil {
		return errs.Storage("failed to look up video grant", err)
	}

	grant.IsDeleted = false
	grant.GrantedBy = grantedBy
	if err := s.db.WithContext(ctx).Save(&grant).Error; err != nil {
		return errs.Storage("failed to refresh video grant", err)
	}
	return nil
}

func (s *Store) UpsertAudioGrant(ctx context.Context, userID, audioID, grantedBy string) error {
	var grant models.AudioAccess
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND audio_id = ?", userID, audioID).
		First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		grant = models.AudioAccess{UserID: userID, AudioID: audioID, GrantedBy: grantedBy}
		if err := s.db.WithContext(ctx).Create(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("audio grant already exists")
			}
			return errs.Storage("failed to create audio grant", err)
		}
		return nil
	}
	if err != nil {
		return errs.Storage("failed to look up audio grant", err)
	}

	grant.IsDeleted = false
	grant.GrantedBy = grantedBy
	if err := s.db.WithContext(ctx).Save(&grant).Error; err != nil {
		return errs.Storage("failed to refresh audio grant", err)
	}
	return nil
}

func (s *Store) RevokeVideoGrant(ctx context.Context, userID, videoID string) error {
	if err := s.db.WithContext(ctx).Model(&models.VideoAccess{}).
		Where("user_id = ? AND video_id = ? AND is_deleted = ?", userID, videoID, false).
		Update("is_deleted", true).Error; err != nil {
		return errs.Storage("failed to revoke video grant", err)
	}
	return nil
}

func (s *Store) RevokeAudioGrant(ctx context.Context, userID, audioID string) error {
	if err := s.db.WithContext(ctx).Model(&models.AudioAccess{}).
		Where("user_id = ? AND audio_id = ? AND is_deleted = ?", userID, audioID, false).
		Update("is_deleted", true).Error; err != nil {
		return errs.Storage("failed to revoke audio grant", err)
	}
	return nil
}

func (s *Store) VideoGrantsByUser(ctx context.Context, userID string) ([]models.VideoAccess, error) {
	var grants []models.VideoAccess
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Find(&grants).Error; err != nil {
		return nil, errs.Storage("failed to list video grants", err)
	}
	return grants, nil
}

func (s *Store) AudioGrantsByUser(ctx context.Context, userID string) ([]models.AudioAccess, error) {
	var grants []models.AudioAccess
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Find(&grants).Error; err != nil {
		return nil, errs.Storage("failed to list audio grants", err)
	}
	return grants, nil
}

// --- GrantStore: enrollments ---

func (s *Store) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Count(&count).Error; err != nil {
		return false, errs.Storage("failed to check enrollment", err)
	}
	return count > 0, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, enrollment *models.CourseEnrollment) error {
	if err := s.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("user is already enrolled in this course")
		}
		return errs.Storage("failed to create enrollment", err)
	}
	return nil
}

func (s *Store) EnrollmentsByUser(ctx context.Context, userID string) ([]models.CourseEnrollment, error) {
	var enrollments []models.CourseEnrollment
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Find(&enrollments).Error; err != nil {
		return nil, errs.Storage("failed to list enrollments", err)
	}
	return enrollments, nil
}

// --- SalesStore ---

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&user).Error; err != nil {
		return nil, translate(err, "user not found")
	}
	return &user, nil
}

func (s *Store) TeamByID(ctx context.Context, id string) (*models.SalesTeam, error) {
	var team models.SalesTeam
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&team).Error; err != nil {
		return nil, translate(err, "sales team not found")
	}
	return &team, nil
}

func (s *Store) WorkshopByID(ctx context.Context, id string) (*models.Workshop, error) {
	var workshop models.Workshop
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&workshop).Error; err != nil {
		return nil, translate(err, "workshop not found")
	}
	return &workshop, nil
}

func (s *Store) CreateMembershipExclusive(ctx context.Context, member *models.SalesTeamMember) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SalesTeamMember{}).
			Where("sales_person_id = ? AND state = ? AND is_deleted = ?",
				member.SalesPersonID, models.GrantStateActive, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.Conflict("salesperson already has an active team membership")
		}
		member.State = models.GrantStateActive
		return tx.Create(member).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		if errs.IsConflict(err) {
			return err
		}
		// The partial unique index on (sales_person_id) WHERE state='ACTIVE'
		// catches the race the transaction check can miss on weaker setups.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("salesperson already has an active team membership")
		}
		return errs.Storage("failed to create team membership", err)
	}
	return nil
}

func (s *Store) ActiveMembership(ctx context.Context, teamID, salesPersonID string) (*models.SalesTeamMember, error) {
	var member models.SalesTeamMember
	if err := s.db.WithContext(ctx).
		Where("team_id = ? AND sales_person_id = ? AND state = ? AND is_deleted = ?",
			teamID, salesPersonID, models.GrantStateActive, false).
		First(&member).Error; err != nil {
		return nil, translate(err, "active membership not found")
	}
	return &member, nil
}

func (s *Store) AnyActiveMembership(ctx context.Context, salesPersonID string) (*models.SalesTeamMember, error) {
	var member models.SalesTeamMember
	if err := s.db.WithContext(ctx).
		Where("sales_person_id = ? AND state = ? AND is_deleted = ?",
			salesPersonID, models.GrantStateActive, false).
		First(&member).Error; err != nil {
		return nil, translate(err, "active membership not found")
	}
	return &member, nil
}

func (s *Store) SaveMembership(ctx context.Context, member *models.SalesTeamMember) error {
	if err := s.db.WithContext(ctx).Save(member).Error; err != nil {
		return errs.Storage("failed to save team membership", err)
	}
	return nil
}

// AvailableSalesPersons returns active salespersons with zero ACTIVE
// membership rows, computed from current row state on every call.
func (s *Store) AvailableSalesPersons(ctx context.Context) ([]models.User, error) {
	var users []models.User
	sub := s.db.Model(&models.SalesTeamMember{}).
		Select("sales_person_id").
		Where("state = ? AND is_deleted = ?", models.GrantStateActive, false)

	if err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ? AND is_deleted = ?", models.UserRoleSalesPerson, true, false).
		Where("id NOT IN (?)", sub).
		Find(&users).Error; err != nil {
		return nil, errs.Storage("failed to list available salespersons", err)
	}
	return users, nil
}

func (s *Store) WorkshopAccess(ctx context.Context, salesPersonID, workshopID string) (*models.SalesPersonWorkshopAccess, error) {
	var access models.SalesPersonWorkshopAccess
	if err := s.db.WithContext(ctx).
		Where("sales_person_id = ? AND workshop_id = ?", salesPersonID, workshopID).
		First(&access).Error; err != nil {
		return nil, translate(err, "workshop access grant not found")
	}
	return &access, nil
}

func (s *Store) CreateWorkshopAccess(ctx context.Context, access *models.SalesPersonWorkshopAccess) error {
	if err := s.db.WithContext(ctx).Create(access).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("workshop access grant already exists")
		}
		return errs.Storage("failed to create workshop access grant", err)
	}
	return nil
}

func (s *Store) SaveWorkshopAccess(ctx context.Context, access *models.SalesPersonWorkshopAccess) error {
	if err := s.db.WithContext(ctx).Save(access).Error; err != nil {
		return errs.Storage("failed to save workshop access grant", err)
	}
	return nil
}

func (s *Store) ActiveWorkshopsForSalesPerson(ctx context.Context, salesPersonID string) ([]models.Workshop, error) {
	var workshops []models.Workshop
	if err := s.db.WithContext(ctx).
		Joins("JOIN sales_person_workshop_accesses a ON a.workshop_id = workshops.id").
		Where("a.sales_person_id = ? AND a.state = ? AND a.is_deleted = ?",
			salesPersonID, models.GrantStateActive, false).
		Where("workshops.active = ? AND workshops.is_deleted = ?", true, false).
		Find(&workshops).Error; err != nil {
		return nil, errs.Storage("failed to list accessible workshops", err)
	}
	return workshops, nil
}
