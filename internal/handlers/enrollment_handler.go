package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// FanOutEnqueuer schedules a background retry of the grant fan-out. Kept as
// an interface so handlers stay decoupled from the task queue wiring.
type FanOutEnqueuer interface {
	EnqueueGrantFanOut(ctx context.Context, userID, courseID string) error
}

type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	grants      store.GrantStore
	enqueuer    FanOutEnqueuer
	log         *logger.Logger
}

func NewEnrollmentHandler(enrollments *services.EnrollmentService, grants store.GrantStore, enqueuer FanOutEnqueuer) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		grants:      grants,
		enqueuer:    enqueuer,
		log:         logger.New("enrollment_handler"),
	}
}

type EnrollRequest struct {
	UserID string `json:"userId" validate:"omitempty,uuid"`
}

// Enroll creates an enrollment and fans out per-video grants. A failed grant
// write never fails the enrollment; it is reported in the response and
// retried in the background.
// @Summary Enroll a user in a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body EnrollRequest false "Target user (admins only; defaults to caller)"
// @Success 201 {object} map[string]interface{} "Enrollment created"
// @Failure 409 {object} map[string]string "Already enrolled"
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
	var req EnrollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := middleware.GetUserID(c)
	if req.UserID != "" && req.UserID != userID {
		// Enrolling someone else is an admin operation.
		if middleware.GetUserRole(c) != models.UserRoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Only admins can enroll other users")
		}
		userID = req.UserID
	}

	courseID := c.Param("id")
	enrollment, result, err := h.enrollments.Enroll(c.Request().Context(), userID, courseID)
	if err != nil {
		return err
	}

	if result.Failed() > 0 {
		h.log.Warn("Grant fan-out for user %s course %s left %d grants unwritten, scheduling retry",
			userID, courseID, result.Failed())
		if h.enqueuer != nil {
			if err := h.enqueuer.EnqueueGrantFanOut(c.Request().Context(), userID, courseID); err != nil {
				h.log.Error("Failed to enqueue grant fan-out retry", err)
			}
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"enrollment":    enrollment,
		"grantsWritten": result.Succeeded(),
		"grantsFailed":  result.Failed(),
	})
}

// ListMyEnrollments returns the caller's course enrollments.
func (h *EnrollmentHandler) ListMyEnrollments(c echo.Context) error {
	userID := middleware.GetUserID(c)
	enrollments, err := h.grants.EnrollmentsByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  enrollments,
		"total": len(enrollments),
	})
}
