package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buscapolo/fieldops/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports the required fields a submission left empty. The
// operation that raised it has persisted nothing.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.MissingFields, ", ")
}

// ConflictError reports a scheduling collision. It carries the conflicting
// job so callers can tell the user whose slot they hit.
type ConflictError struct {
	Job model.Job
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot taken: job for %s at %s",
		e.Job.ClientName, e.Job.ScheduledAt.Format(time.RFC3339))
}
