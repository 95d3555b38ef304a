package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buscapolo/fieldops/internal/costing"
	"github.com/buscapolo/fieldops/internal/model"
	"github.com/buscapolo/fieldops/internal/schedule"
	"github.com/buscapolo/fieldops/internal/store"
)

// JobService owns the jobs collection: direct creation, payment tracking,
// rescheduling, deletion, and the calendar and monthly summary views.
type JobService struct {
	store          *store.Store
	conflictWindow time.Duration
	now            func() time.Time
}

func NewJobService(st *store.Store, conflictWindow time.Duration) *JobService {
	return &JobService{store: st, conflictWindow: conflictWindow, now: time.Now}
}

// NewJobInput is a direct new-job submission.
type NewJobInput struct {
	ClientID    string               `json:"clienteId"`
	Address     string               `json:"domicilio"`
	WorkType    string               `json:"tipoTrabajo"`
	Description string               `json:"trabajo"`
	Materials   []model.MaterialLine `json:"materiales"`
	LaborCost   string               `json:"costoManoDeObra"`
	ScheduledAt time.Time            `json:"fecha"`
	Photos      []string             `json:"photos"`
}

// PaymentUpdate is the result of a payment-status change. FollowUpRequired
// is set when the job was just cancelled: the caller must either
// reschedule or delete it, the record does not stay cancelled and idle.
type PaymentUpdate struct {
	Job              model.Job `json:"job"`
	FollowUpRequired bool      `json:"followUpRequired"`
}

// Create validates the submission, conflict-checks the requested slot and
// persists the job. Validation failures and conflicts abort with no state
// change.
func (s *JobService) Create(ctx context.Context, input NewJobInput) (*model.Job, error) {
	var missing []string
	if strings.TrimSpace(input.ClientID) == "" {
		missing = append(missing, "clienteId")
	}
	if strings.TrimSpace(input.Address) == "" {
		missing = append(missing, "domicilio")
	}
	if strings.TrimSpace(input.WorkType) == "" {
		missing = append(missing, "tipoTrabajo")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "trabajo")
	}
	materials := model.FilterMaterials(input.Materials)
	if len(materials) == 0 {
		missing = append(missing, "materiales")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}
	if input.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: fecha is required", ErrInvalidInput)
	}

	client, err := findClient(ctx, s.store, input.ClientID)
	if err != nil {
		return nil, err
	}

	labor := costing.ParseAmount(input.LaborCost)
	job := model.Job{
		ID:            uuid.NewString(),
		ClientID:      client.ID,
		ClientName:    client.FullName(),
		Address:       strings.TrimSpace(input.Address),
		Phone:         client.Phone,
		WorkType:      strings.TrimSpace(input.WorkType),
		Description:   strings.TrimSpace(input.Description),
		Materials:     materials,
		MaterialsCost: costing.MaterialsTotal(materials),
		LaborCost:     labor,
		Total:         costing.Total(materials, labor),
		ScheduledAt:   input.ScheduledAt,
		Photos:        input.Photos,
		PaymentStatus: model.PaymentStatusPending,
	}

	err = s.store.UpdateJobs(ctx, func(jobs []model.Job) ([]model.Job, error) {
		if conflict := schedule.FindConflict(job.ScheduledAt, jobs, s.conflictWindow); conflict != nil {
			return nil, &ConflictError{Job: *conflict}
		}
		return append(jobs, job), nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns every job ordered by scheduled time.
func (s *JobService) List(ctx context.Context) ([]model.Job, error) {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].ScheduledAt.Before(jobs[j].ScheduledAt)
	})
	return jobs, nil
}

// Get returns one job by id.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, ErrNotFound
}

// SetPaymentStatus moves a job between payment states. Transitions are
// free-form; cancelling flags the mandatory follow-up.
func (s *JobService) SetPaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (*PaymentUpdate, error) {
	if !model.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	var updated model.Job
	err := s.store.UpdateJobs(ctx, func(jobs []model.Job) ([]model.Job, error) {
		for i := range jobs {
			if jobs[i].ID != id {
				continue
			}
			jobs[i].PaymentStatus = status
			updated = jobs[i]
			return jobs, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &PaymentUpdate{
		Job:              updated,
		FollowUpRequired: status == model.PaymentStatusCancelled,
	}, nil
}

// Reschedule moves a job to a new slot. The job's own record is excluded
// from the conflict scan so it never collides with its previous time, and
// a successful move resets payment to Pendiente.
func (s *JobService) Reschedule(ctx context.Context, id string, scheduledAt time.Time) (*model.Job, error) {
	if scheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: fecha is required", ErrInvalidInput)
	}

	var updated model.Job
	err := s.store.UpdateJobs(ctx, func(jobs []model.Job) ([]model.Job, error) {
		others := schedule.ExcludeJob(jobs, id)
		if len(others) == len(jobs) {
			return nil, ErrNotFound
		}
		if conflict := schedule.FindConflict(scheduledAt, others, s.conflictWindow); conflict != nil {
			return nil, &ConflictError{Job: *conflict}
		}
		for i := range jobs {
			if jobs[i].ID == id {
				jobs[i].ScheduledAt = scheduledAt
				jobs[i].PaymentStatus = model.PaymentStatusPending
				updated = jobs[i]
			}
		}
		return jobs, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a job from storage.
func (s *JobService) Delete(ctx context.Context, id string) error {
	return s.store.UpdateJobs(ctx, func(jobs []model.Job) ([]model.Job, error) {
		for i := range jobs {
			if jobs[i].ID == id {
				return append(jobs[:i], jobs[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// Week returns the seven days of the week containing date (Monday first),
// each with its jobs in start order.
func (s *JobService) Week(ctx context.Context, date time.Time) ([]model.DaySchedule, error) {
	jobs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	start := startOfWeek(date)
	days := make([]model.DaySchedule, 7)
	for i := range days {
		day := start.AddDate(0, 0, i)
		days[i] = model.DaySchedule{Date: day, Jobs: []model.Job{}}
		for _, job := range jobs {
			if sameDay(job.ScheduledAt, day) {
				days[i].Jobs = append(days[i].Jobs, job)
			}
		}
	}
	return days, nil
}

func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := t.AddDate(0, 0, 1-weekday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
