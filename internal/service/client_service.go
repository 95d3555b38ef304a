package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/buscapolo/fieldops/internal/model"
	"github.com/buscapolo/fieldops/internal/store"
)

// ClientService owns the clients collection: registration, in-place edits,
// explicit deletion, and the per-client job history view.
type ClientService struct {
	store       *store.Store
	phonePrefix string
}

func NewClientService(st *store.Store, phonePrefix string) *ClientService {
	return &ClientService{store: st, phonePrefix: phonePrefix}
}

// NewClientInput is a client-registration submission.
type NewClientInput struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Address   string `json:"domicilio"`
}

// ClientJobs is the client-detail view: job history plus the outstanding
// total across jobs still pending payment.
type ClientJobs struct {
	Client       model.Client `json:"client"`
	Jobs         []model.Job  `json:"jobs"`
	PendingTotal float64      `json:"pendingTotal"`
}

// Create validates and registers a new client. The phone number gets the
// configured country prefix when the submission has none.
func (s *ClientService) Create(ctx context.Context, input NewClientInput) (*model.Client, error) {
	var missing []string
	if strings.TrimSpace(input.FirstName) == "" {
		missing = append(missing, "nombre")
	}
	if strings.TrimSpace(input.LastName) == "" {
		missing = append(missing, "apellido")
	}
	if strings.TrimSpace(input.Phone) == "" {
		missing = append(missing, "telefono")
	}
	if strings.TrimSpace(input.Address) == "" {
		missing = append(missing, "domicilio")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	phone := strings.TrimSpace(input.Phone)
	if !strings.HasPrefix(phone, s.phonePrefix) {
		phone = s.phonePrefix + phone
	}

	client := model.Client{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     phone,
		Address:   strings.TrimSpace(input.Address),
	}

	err := s.store.UpdateClients(ctx, func(clients []model.Client) ([]model.Client, error) {
		return append(clients, client), nil
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// List returns all clients, optionally filtered by a case-insensitive name
// search, sorted by last name then first name.
func (s *ClientService) List(ctx context.Context, query string) ([]model.Client, error) {
	clients, err := s.store.LoadClients(ctx)
	if err != nil {
		return nil, err
	}

	if query = strings.ToLower(strings.TrimSpace(query)); query != "" {
		filtered := clients[:0]
		for _, client := range clients {
			if strings.Contains(strings.ToLower(client.FirstName), query) ||
				strings.Contains(strings.ToLower(client.LastName), query) {
				filtered = append(filtered, client)
			}
		}
		clients = filtered
	}

	sort.Slice(clients, func(i, j int) bool {
		if clients[i].LastName != clients[j].LastName {
			return clients[i].LastName < clients[j].LastName
		}
		return clients[i].FirstName < clients[j].FirstName
	})
	return clients, nil
}

// Get returns one client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*model.Client, error) {
	clients, err := s.store.LoadClients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdateClientInput carries the mutable client fields. Empty fields are
// left unchanged.
type UpdateClientInput struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Address   string `json:"domicilio"`
}

// Update edits a client in place. The id never changes.
func (s *ClientService) Update(ctx context.Context, id string, input UpdateClientInput) (*model.Client, error) {
	var updated *model.Client
	err := s.store.UpdateClients(ctx, func(clients []model.Client) ([]model.Client, error) {
		for i := range clients {
			if clients[i].ID != id {
				continue
			}
			if v := strings.TrimSpace(input.FirstName); v != "" {
				clients[i].FirstName = v
			}
			if v := strings.TrimSpace(input.LastName); v != "" {
				clients[i].LastName = v
			}
			if v := strings.TrimSpace(input.Phone); v != "" {
				clients[i].Phone = v
			}
			if v := strings.TrimSpace(input.Address); v != "" {
				clients[i].Address = v
			}
			updated = &clients[i]
			return clients, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a client. Jobs and quotes referencing it keep their
// denormalized copies; nothing cascades.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	return s.store.UpdateClients(ctx, func(clients []model.Client) ([]model.Client, error) {
		for i := range clients {
			if clients[i].ID == id {
				return append(clients[:i], clients[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// Jobs returns the client's job history, newest first, with the total
// still owed across payment-pending jobs.
func (s *ClientService) Jobs(ctx context.Context, id string) (*ClientJobs, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return nil, err
	}

	result := &ClientJobs{Client: *client, Jobs: []model.Job{}}
	for _, job := range jobs {
		if job.ClientID != id {
			continue
		}
		result.Jobs = append(result.Jobs, job)
		if job.PaymentStatus == model.PaymentStatusPending {
			result.PendingTotal += job.Total
		}
	}
	sort.Slice(result.Jobs, func(i, j int) bool {
		return result.Jobs[i].ScheduledAt.After(result.Jobs[j].ScheduledAt)
	})
	return result, nil
}
