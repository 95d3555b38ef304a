// Package schedule decides whether a candidate job timestamp collides with
// the existing schedule. The check is a tolerance window, not an exact
// match: two jobs closer than the window are treated as the same slot.
package schedule

import (
	"time"

	"github.com/buscapolo/fieldops/internal/model"
)

// DefaultConflictWindow is the tolerance under which two job timestamps
// are considered to collide.
const DefaultConflictWindow = time.Minute

// FindConflict scans jobs in collection order and returns the first one
// whose ScheduledAt lies within window of candidate, or nil when the slot
// is free. An empty schedule never conflicts.
func FindConflict(candidate time.Time, jobs []model.Job, window time.Duration) *model.Job {
	if window <= 0 {
		window = DefaultConflictWindow
	}
	for i := range jobs {
		diff := candidate.Sub(jobs[i].ScheduledAt)
		if diff < 0 {
			diff = -diff
		}
		if diff < window {
			return &jobs[i]
		}
	}
	return nil
}

// ExcludeJob returns jobs without the record identified by id. Callers
// rescheduling an existing job must exclude it first or the job will
// conflict with its own previous slot.
func ExcludeJob(jobs []model.Job, id string) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.ID == id {
			continue
		}
		out = append(out, job)
	}
	return out
}
