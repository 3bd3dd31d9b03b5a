package services

import (
	"context"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	console "github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// BatchOutcome records the result of one write in a fan-out batch.
type BatchOutcome struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// BatchResult aggregates per-item outcomes of a best-effort fan-out. The
// caller decides whether partial failure is worth surfacing; the fan-out
// itself never aborts on an individual error.
type BatchResult struct {
	Outcomes []BatchOutcome
}

func (r BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

func (r BatchResult) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// EnrollmentService creates course enrollments and fans out the matching
// direct video grants.
type EnrollmentService struct {
	catalog store.AssetCatalog
	grants  store.GrantStore
	log     *console.Logger
}

func NewEnrollmentService(catalog store.AssetCatalog, grants store.GrantStore) *EnrollmentService {
	return &EnrollmentService{
		catalog: catalog,
		grants:  grants,
		log:     console.New("enrollment_service"),
	}
}

// Enroll creates the (user, course) enrollment row, then grants direct
// access to every video under the course. The fan-out is best effort: an
// individual grant failure (typically a duplicate from a prior enrollment
// attempt) is recorded in the batch result and does not fail the
// enrollment. Enrollment succeeds once its own row is committed.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*models.CourseEnrollment, BatchResult, error) {
	enrollment := &models.CourseEnrollment{UserID: userID, CourseID: courseID}
	if err := s.grants.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, BatchResult{}, err
	}

	result := s.FanOutVideoGrants(ctx, userID, courseID)
	if failed := result.Failed(); failed > 0 {
		s.log.Warn("Enrollment fan-out finished with %d/%d failed grants user=%s course=%s",
			failed, len(result.Outcomes), userID, courseID)
	}
	return enrollment, result, nil
}

// FanOutVideoGrants upserts a direct grant for every video in the course.
// Safe to re-run; existing grants are refreshed, not duplicated.
func (s *EnrollmentService) FanOutVideoGrants(ctx context.Context, userID, courseID string) BatchResult {
	videos, err := s.catalog.VideosByCourse(ctx, courseID)
	if err != nil {
		s.log.Warn("Fan-out could not list course videos course=%s: %v", courseID, err)
		return BatchResult{}
	}

	result := BatchResult{Outcomes: make([]BatchOutcome, 0, len(videos))}
	for _, video := range videos {
		err := s.grants.UpsertVideoGrant(ctx, userID, video.ID, "")
		if err != nil {
			s.log.Warn("Fan-out grant failed video=%s user=%s: %v", video.ID, userID, err)
		}
		result.Outcomes = append(result.Outcomes, BatchOutcome{ID: video.ID, Err: err})
	}
	return result
}
