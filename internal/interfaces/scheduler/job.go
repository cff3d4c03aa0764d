package scheduler

import "context"

// Job is a unit of work run by the worker pool.
type Job interface {
	Execute(ctx context.Context) error

	// UserID is the user the job acts for, or "" for maintenance jobs.
	UserID() string

	Description() string
}
