package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/tasks/rate"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

var (
	cfg, _ = config.Load()
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db          *gorm.DB
	logger      *logger.Logger
	taskClient  *TaskClient
	enrollments *services.EnrollmentService
	limiter     *rate.QueueRateLimiter
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	st := store.New(db)
	taskClient := NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)

	return &TaskHandler{
		db:          db,
		logger:      logger.New("task_handler"),
		taskClient:  taskClient,
		enrollments: services.NewEnrollmentService(st, st),
		limiter: rate.NewQueueRateLimiter(taskClient.GetRedisClient(), rate.QueueConfig{
			Name: TaskTypeGrantFanOut,
			RateLimit: rate.RateLimit{
				Window:  rate.WindowDefault,
				MaxJobs: rate.MaxJobsDefault,
			},
		}),
	}
}

// HandleGrantFanOut re-runs the per-video grant fan-out for one enrollment.
// The upsert semantics make replays safe; any remaining failure is returned
// so asynq retries the task.
func (h *TaskHandler) HandleGrantFanOut(ctx context.Context, t *asynq.Task) error {
	var payload GrantFanOutPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("Invalid grant fan-out payload", err)
		return fmt.Errorf("invalid payload: %w: %w", err, asynq.SkipRetry)
	}

	allowed, err := h.limiter.Allow(ctx, payload.CourseID)
	if err != nil {
		return fmt.Errorf("rate limiter check failed: %w", err)
	}
	if !allowed {
		return fmt.Errorf("grant fan-out for course %s throttled, retrying later", payload.CourseID)
	}

	result := h.enrollments.FanOutVideoGrants(ctx, payload.UserID, payload.CourseID)
	if failed := result.Failed(); failed > 0 {
		return fmt.Errorf("grant fan-out for user %s course %s left %d failures",
			payload.UserID, payload.CourseID, failed)
	}

	h.logger.Success("Grant fan-out completed for user %s course %s (%d grants)",
		payload.UserID, payload.CourseID, result.Succeeded())
	return nil
}

// HandleTeamAudit sweeps the membership rows for violations of the
// one-active-membership rule. The partial unique index should make this
// impossible; a hit means rows predate the index or were edited out of band.
func (h *TaskHandler) HandleTeamAudit(ctx context.Context, t *asynq.Task) error {
	type violation struct {
		SalesPersonID string
		Count         int64
	}

	var violations []violation
	err := h.db.WithContext(ctx).
		Model(&models.SalesTeamMember{}).
		Select("sales_person_id, COUNT(*) as count").
		Where("state = ? AND is_deleted = false", models.GrantStateActive).
		Group("sales_person_id").
		Having("COUNT(*) > 1").
		Scan(&violations).Error
	if err != nil {
		return fmt.Errorf("team audit query failed: %w", err)
	}

	for _, v := range violations {
		h.logger.Warn("Salesperson %s holds %d active memberships", v.SalesPersonID, v.Count)
	}

	if len(violations) == 0 {
		h.logger.Info("Team audit clean")
	}
	return nil
}
