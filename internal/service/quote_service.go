package service

import (
	"context"
	"errors"
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

// QuoteService owns the quotes collection: creation, the accept/reject
// state machine, and conversion into scheduled jobs.
type QuoteService struct {
	store          *store.Store
	conflictWindow time.Duration
	now            func() time.Time
}

func NewQuoteService(st *store.Store, conflictWindow time.Duration) *QuoteService {
	return &QuoteService{store: st, conflictWindow: conflictWindow, now: time.Now}
}

// NewQuoteInput is a quote submission. Amount fields arrive as the raw
// form strings; unparseable values cost 0.
type NewQuoteInput struct {
	ClientID    string               `json:"clienteId"`
	Address     string               `json:"direccion"`
	WorkType    string               `json:"tipoTrabajo"`
	Description string               `json:"descripcionTrabajo"`
	Materials   []model.MaterialLine `json:"materiales"`
	LaborCost   string               `json:"costoManoDeObra"`
	ValidUntil  time.Time            `json:"fechaValidez"`
	Photos      []string             `json:"photos"`
}

// Create validates and persists a new pending quote. Client, work type and
// description are required, plus at least one material line with a
// description. ValidUntil is taken as submitted; past dates are allowed.
func (s *QuoteService) Create(ctx context.Context, input NewQuoteInput) (*model.Quote, error) {
	var missing []string
	if strings.TrimSpace(input.ClientID) == "" {
		missing = append(missing, "clienteId")
	}
	if strings.TrimSpace(input.WorkType) == "" {
		missing = append(missing, "tipoTrabajo")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "descripcionTrabajo")
	}
	materials := model.FilterMaterials(input.Materials)
	if len(materials) == 0 {
		missing = append(missing, "materiales")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	client, err := findClient(ctx, s.store, input.ClientID)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(input.Address)
	if address == "" {
		address = client.Address
	}

	labor := costing.ParseAmount(input.LaborCost)
	quote := model.Quote{
		ID:             uuid.NewString(),
		ClientID:       client.ID,
		ClientName:     client.FullName(),
		Phone:          client.Phone,
		Address:        address,
		WorkType:       strings.TrimSpace(input.WorkType),
		Description:    strings.TrimSpace(input.Description),
		Materials:      materials,
		LaborCost:      labor,
		MaterialsTotal: costing.MaterialsTotal(materials),
		Total:          costing.Total(materials, labor),
		ValidUntil:     input.ValidUntil,
		CreatedAt:      s.now().UTC(),
		Status:         model.QuoteStatusPending,
		Photos:         input.Photos,
	}

	err = s.store.UpdateQuotes(ctx, func(quotes []model.Quote) ([]model.Quote, error) {
		return append(quotes, quote), nil
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns every stored quote, newest first.
func (s *QuoteService) List(ctx context.Context) ([]model.Quote, error) {
	quotes, err := s.store.LoadQuotes(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	return quotes, nil
}

// ListActive returns the pending list: quotes neither accepted, rejected
// nor past their validity date. Inactive quotes stay in storage; only the
// view filters them.
func (s *QuoteService) ListActive(ctx context.Context) ([]model.Quote, error) {
	quotes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	active := []model.Quote{}
	for _, quote := range quotes {
		if quote.Active(now) {
			active = append(active, quote)
		}
	}
	return active, nil
}

// Get returns one quote by id.
func (s *QuoteService) Get(ctx context.Context, id string) (*model.Quote, error) {
	quotes, err := s.store.LoadQuotes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].ID == id {
			return &quotes[i], nil
		}
	}
	return nil, ErrNotFound
}

// SetStatus drives the quote state machine. Only Pendiente moves:
// Pendiente → Aceptado or Pendiente → Rechazado, both one-way.
func (s *QuoteService) SetStatus(ctx context.Context, id string, status model.QuoteStatus) (*model.Quote, error) {
	if status != model.QuoteStatusAccepted && status != model.QuoteStatusRejected {
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput,
			model.QuoteStatusAccepted, model.QuoteStatusRejected)
	}

	var updated *model.Quote
	err := s.store.UpdateQuotes(ctx, func(quotes []model.Quote) ([]model.Quote, error) {
		for i := range quotes {
			if quotes[i].ID != id {
				continue
			}
			if quotes[i].Status != model.QuoteStatusPending {
				return nil, fmt.Errorf("%w: quote is already %s", ErrInvalidInput, quotes[i].Status)
			}
			quotes[i].Status = status
			updated = &quotes[i]
			return quotes, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a quote from storage.
func (s *QuoteService) Delete(ctx context.Context, id string) error {
	return s.store.UpdateQuotes(ctx, func(quotes []model.Quote) ([]model.Quote, error) {
		for i := range quotes {
			if quotes[i].ID == id {
				return append(quotes[:i], quotes[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// Convert turns an accepted quote into a scheduled job. Preconditions: the
// quote is Aceptado and has not been converted before. The precondition
// check and the conversion marker are one atomic step under the quotes
// writer lock, so two concurrent calls on the same quote cannot both pass;
// only the winner goes on to insert the job. The candidate slot is
// conflict-checked against every existing job under the jobs writer lock;
// on conflict the claim is released and nothing is persisted. On success
// the new job carries the quote's client, work and cost data, payment
// starts Pendiente, and the quote durably records the job it became so it
// cannot be converted twice.
func (s *QuoteService) Convert(ctx context.Context, id string, scheduledAt time.Time) (*model.Job, error) {
	if scheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}

	jobID := uuid.NewString()
	var job model.Job
	err := s.store.UpdateQuotes(ctx, func(quotes []model.Quote) ([]model.Quote, error) {
		for i := range quotes {
			if quotes[i].ID != id {
				continue
			}
			if quotes[i].Status != model.QuoteStatusAccepted {
				return nil, fmt.Errorf("%w: only accepted quotes convert, quote is %s", ErrInvalidInput, quotes[i].Status)
			}
			if quotes[i].ConvertedToJobID != "" {
				return nil, fmt.Errorf("%w: quote already converted to job %s", ErrInvalidInput, quotes[i].ConvertedToJobID)
			}
			quotes[i].ConvertedToJobID = jobID
			quote := quotes[i]
			job = model.Job{
				ID:            jobID,
				ClientID:      quote.ClientID,
				ClientName:    quote.ClientName,
				Address:       quote.Address,
				Phone:         quote.Phone,
				WorkType:      quote.WorkType,
				Description:   quote.Description,
				Materials:     quote.Materials,
				MaterialsCost: quote.MaterialsTotal,
				LaborCost:     quote.LaborCost,
				Total:         quote.Total,
				ScheduledAt:   scheduledAt,
				Photos:        quote.Photos,
				PaymentStatus: model.PaymentStatusPending,
				QuoteID:       quote.ID,
			}
			return quotes, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}

	err = s.store.UpdateJobs(ctx, func(jobs []model.Job) ([]model.Job, error) {
		if conflict := schedule.FindConflict(scheduledAt, jobs, s.conflictWindow); conflict != nil {
			return nil, &ConflictError{Job: *conflict}
		}
		return append(jobs, job), nil
	})
	if err != nil {
		// The job never landed; release the claim so the caller can
		// retry with another slot.
		rollbackErr := s.store.UpdateQuotes(ctx, func(quotes []model.Quote) ([]model.Quote, error) {
			for i := range quotes {
				if quotes[i].ID == id && quotes[i].ConvertedToJobID == jobID {
					quotes[i].ConvertedToJobID = ""
				}
			}
			return quotes, nil
		})
		if rollbackErr != nil {
			return nil, errors.Join(err, rollbackErr)
		}
		return nil, err
	}
	return &job, nil
}

func findClient(ctx context.Context, st *store.Store, id string) (*model.Client, error) {
	clients, err := st.LoadClients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
}
