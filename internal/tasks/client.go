package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// TaskClient handles task enqueuing with improved error handling and context support
type TaskClient struct {
	client       *asynq.Client
	logger       *logger.Logger
	redisOptions *redis.Options
	redisClient  *redis.Client
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// GetRedisClient exposes the shared redis connection for rate limiting.
func (c *TaskClient) GetRedisClient() *redis.Client {
	return c.redisClient
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(
		&redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
	)

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		redisOptions: &redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		redisClient: redisClient,
		logger:      logger.New("TASKS"),
	}
}

// EnqueueGrantFanOut schedules a background pass over an enrollment's video
// grants. Used as the retry path when the synchronous fan-out reported
// failures.
func (c *TaskClient) EnqueueGrantFanOut(ctx context.Context, userID, courseID string) error {
	payload, err := json.Marshal(GrantFanOutPayload{UserID: userID, CourseID: courseID})
	if err != nil {
		return fmt.Errorf("failed to marshal fan-out payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeGrantFanOut, payload)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue grant fan-out: %w", err)
	}

	c.logger.Info("Enqueued grant fan-out task %s for user %s course %s", info.ID, userID, courseID)
	return nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
