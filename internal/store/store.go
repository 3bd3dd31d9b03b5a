// Package store is the data-access layer for grants, enrollments, sales
// hierarchy rows and asset metadata. Services depend on the interfaces here,
// never on gorm directly, so tests can substitute in-memory fakes.
package store

import (
	"context"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
)

// AssetCatalog is the read-only source of truth for media asset metadata:
// storage path, published flag and owning course.
type AssetCatalog interface {
	VideoByID(ctx context.Context, id string) (*models.Video, error)
	AudioByID(ctx context.Context, id string) (*models.Audio, error)
	PublishedVideosByCourse(ctx context.Context, courseID string) ([]models.Video, error)
	PublishedAudiosByCourse(ctx context.Context, courseID string) ([]models.Audio, error)
	VideosByCourse(ctx context.Context, courseID string) ([]models.Video, error)
}

// GrantStore holds direct per-user-per-asset grants and course enrollments.
type GrantStore interface {
	HasVideoGrant(ctx context.Context, userID, videoID string) (bool, error)
	HasAudioGrant(ctx context.Context, userID, audioID string) (bool, error)
	UpsertVideoGrant(ctx context.Context, userID, videoID, grantedBy string) error
	UpsertAudioGrant(ctx context.Context, userID, audioID, grantedBy string) error
	RevokeVideoGrant(ctx context.Context, userID, videoID string) error
	RevokeAudioGrant(ctx context.Context, userID, audioID string) error
	VideoGrantsByUser(ctx context.Context, userID string) ([]models.VideoAccess, error)
	AudioGrantsByUser(ctx context.Context, userID string) ([]models.AudioAccess, error)

	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	CreateEnrollment(ctx context.Context, enrollment *models.CourseEnrollment) error
	EnrollmentsByUser(ctx context.Context, userID string) ([]models.CourseEnrollment, error)
}

// SalesStore holds the sales-team hierarchy and workshop access rows.
type SalesStore interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	TeamByID(ctx context.Context, id string) (*models.SalesTeam, error)
	WorkshopByID(ctx context.Context, id string) (*models.Workshop, error)

	// CreateMembershipExclusive inserts an ACTIVE membership row inside a
	// serializable transaction after verifying the salesperson has no other
	// ACTIVE row anywhere. Two concurrent calls for the same salesperson
	// cannot both succeed; the loser observes a Conflict.
	CreateMembershipExclusive(ctx context.Context, member *models.SalesTeamMember) error
	ActiveMembership(ctx context.Context, teamID, salesPersonID string) (*models.SalesTeamMember, error)
	AnyActiveMembership(ctx context.Context, salesPersonID string) (*models.SalesTeamMember, error)
	SaveMembership(ctx context.Context, member *models.SalesTeamMember) error
	AvailableSalesPersons(ctx context.Context) ([]models.User, error)

	WorkshopAccess(ctx context.Context, salesPersonID, workshopID string) (*models.SalesPersonWorkshopAccess, error)
	CreateWorkshopAccess(ctx context.Context, access *models.SalesPersonWorkshopAccess) error
	SaveWorkshopAccess(ctx context.Context, access *models.SalesPersonWorkshopAccess) error
	ActiveWorkshopsForSalesPerson(ctx context.Context, salesPersonID string) ([]models.Workshop, error)
}
