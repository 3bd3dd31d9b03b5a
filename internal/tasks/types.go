package tasks

import "time"

// Task Types
const (
	// TaskTypeGrantFanOut retries the per-video grant fan-out for an
	// enrollment whose synchronous fan-out left failures behind.
	TaskTypeGrantFanOut = "grants:fanout"

	// TaskTypeTeamAudit periodically verifies the one-active-membership
	// invariant over the sales team rows.
	TaskTypeTeamAudit = "teams:audit"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks
	QueueDefault  = "default"  // For regular tasks like grant fan-out
	QueueLow      = "low"      // For background tasks like audits
)

// Task Priorities (1-10, higher is more important)
const (
	PriorityCritical = 10
	PriorityHigh     = 8
	PriorityNormal   = 5
	PriorityLow      = 3
	PriorityBG       = 1
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

// GrantFanOutPayload identifies the enrollment whose grants need writing.
type GrantFanOutPayload struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
}
