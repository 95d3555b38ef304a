package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buscapolo/fieldops/internal/model"
)

func testClient() model.Client {
	return model.Client{
		ID:        "c1",
		FirstName: "María",
		LastName:  "Gómez",
		Phone:     "+541112345678",
		Address:   "Av. Rivadavia 123",
	}
}

func TestQuoteService_Create(t *testing.T) {
	st := newTestStore(t)
	seedClient(t, st, testClient())
	svc := NewQuoteService(st, time.Minute)
	ctx := context.Background()

	quote, err := svc.Create(ctx, NewQuoteInput{
		ClientID:    "c1",
		WorkType:    "Electricidad",
		Description: "Cambio de térmica",
		Materials: []model.MaterialLine{
			{Description: "Térmica 25A", Quantity: "1", UnitPrice: "8000"},
			{Description: "", Quantity: "3", UnitPrice: "999"},
		},
		LaborCost:  "5000",
		ValidUntil: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, "María Gómez", quote.ClientName)
	assert.Equal(t, "Av. Rivadavia 123", quote.Address, "falls back to the client's address")
	assert.Equal(t, model.QuoteStatusPending, quote.Status)
	require.Len(t, quote.Materials, 1, "blank material lines are dropped")
	assert.Equal(t, 8000.0, quote.MaterialsTotal)
	assert.Equal(t, 13000.0, quote.Total)

	stored, err := svc.Get(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, stored.ID)
}

func TestQuoteService_CreateMissingFields(t *testing.T) {
	st := newTestStore(t)
	svc := NewQuoteService(st, time.Minute)

	_, err := svc.Create(context.Background(), NewQuoteInput{})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.ElementsMatch(t,
		[]string{"clienteId", "tipoTrabajo", "descripcionTrabajo", "materiales"},
		validation.MissingFields)
}

func TestQuoteService_CreateUnknownClient(t *testing.T) {
	st := newTestStore(t)
	svc := NewQuoteService(st, time.Minute)

	_, err := svc.Create(context.Background(), NewQuoteInput{
		ClientID:    "ghost",
		WorkType:    "Plomería",
		Description: "Pérdida bajo mesada",
		Materials:   []model.MaterialLine{{Description: "Flexible", Quantity: "1", UnitPrice: "1200"}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteService_StatusMachine(t *testing.T) {
	st := newTestStore(t)
	seedClient(t, st, testClient())
	svc := NewQuoteService(st, time.Minute)
	ctx := context.Background()

	quote, err := svc.Create(ctx, NewQuoteInput{
		ClientID:    "c1",
		WorkType:    "Electricidad",
		Description: "Tablero nuevo",
		Materials:   []model.MaterialLine{{Description: "Tablero", Quantity: "1", UnitPrice: "15000"}},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, quote.ID, model.QuoteStatusPending)
	assert.ErrorIs(t, err, ErrInvalidInput, "Pendiente is not a target state")

	accepted, err := svc.SetStatus(ctx, quote.ID, model.QuoteStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusAccepted, accepted.Status)

	_, err = svc.SetStatus(ctx, quote.ID, model.QuoteStatusRejected)
	assert.ErrorIs(t, err, ErrInvalidInput, "accepted quotes never move again")

	_, err = svc.SetStatus(ctx, "missing", model.QuoteStatusAccepted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteService_ListActive(t *testing.T) {
	st := newTestStore(t)
	svc := NewQuoteService(st, time.Minute)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = fixedTime(now)
	ctx := context.Background()

	seedQuote(t, st, model.Quote{ID: "pending", Status: model.QuoteStatusPending, ValidUntil: now.AddDate(0, 0, 10)})
	seedQuote(t, st, model.Quote{ID: "expired", Status: model.QuoteStatusPending, ValidUntil: now.AddDate(0, 0, -1)})
	seedQuote(t, st, model.Quote{ID: "accepted", Status: model.QuoteStatusAccepted, ValidUntil: now.AddDate(0, 0, 10)})
	seedQuote(t, st, model.Quote{ID: "rejected", Status: model.QuoteStatusRejected, ValidUntil: now.AddDate(0, 0, 10)})
	seedQuote(t, st, model.Quote{ID: "open-ended", Status: model.QuoteStatusPending})

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(active))
	for _, quote := range active {
		ids = append(ids, quote.ID)
	}
	assert.ElementsMatch(t, []string{"pending", "open-ended"}, ids)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5, "inactive quotes stay stored")
}

func TestQuoteService_Convert(t *testing.T) {
	st := newTestStore(t)
	seedClient(t, st, testClient())
	svc := NewQuoteService(st, time.Minute)
	ctx := context.Background()

	quote, err := svc.Create(ctx, NewQuoteInput{
		ClientID:    "c1",
		WorkType:    "Plomería",
		Description: "Cambio de cañería",
		Materials:   []model.MaterialLine{{Description: "Caño PVC", Quantity: "4", UnitPrice: "1500"}},
		LaborCost:   "10000",
	})
	require.NoError(t, err)

	slot := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

	_, err = svc.Convert(ctx, quote.ID, slot)
	assert.ErrorIs(t, err, ErrInvalidInput, "pending quotes do not convert")

	_, err = svc.SetStatus(ctx, quote.ID, model.QuoteStatusAccepted)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, quote.ID, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput, "a schedule slot is required")

	job, err := svc.Convert(ctx, quote.ID, slot)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, job.QuoteID)
	assert.Equal(t, "María Gómez", job.ClientName)
	assert.Equal(t, model.PaymentStatusPending, job.PaymentStatus)
	assert.Equal(t, 6000.0, job.MaterialsCost)
	assert.Equal(t, 16000.0, job.Total)
	assert.Equal(t, slot, job.ScheduledAt)

	converted, err := svc.Get(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, converted.ConvertedToJobID)

	_, err = svc.Convert(ctx, quote.ID, slot.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInput, "a quote converts once")

	jobs, err := st.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestQuoteService_ConvertConflict(t *testing.T) {
	st := newTestStore(t)
	seedClient(t, st, testClient())
	svc := NewQuoteService(st, time.Minute)
	ctx := context.Background()

	slot := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	seedJob(t, st, model.Job{ID: "busy", ClientName: "Pérez", ScheduledAt: slot})

	quote, err := svc.Create(ctx, NewQuoteInput{
		ClientID:    "c1",
		WorkType:    "Pintura",
		Description: "Frente completo",
		Materials:   []model.MaterialLine{{Description: "Látex", Quantity: "2", UnitPrice: "9000"}},
	})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, quote.ID, model.QuoteStatusAccepted)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, quote.ID, slot.Add(30*time.Second))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "busy", conflict.Job.ID)

	// Nothing was persisted: the quote is still unconverted and no job
	// was added.
	unchanged, err := svc.Get(ctx, quote.ID)
	require.NoError(t, err)
	assert.Empty(t, unchanged.ConvertedToJobID)

	jobs, err := st.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	// A rejected slot does not burn the quote; a free one still works.
	job, err := svc.Convert(ctx, quote.ID, slot.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, quote.ID, job.QuoteID)
}

func TestQuoteService_ConvertOnceUnderConcurrency(t *testing.T) {
	st := newTestStore(t)
	seedClient(t, st, testClient())
	svc := NewQuoteService(st, time.Minute)
	ctx := context.Background()

	quote, err := svc.Create(ctx, NewQuoteInput{
		ClientID:    "c1",
		WorkType:    "Electricidad",
		Description: "Tablero nuevo",
		Materials:   []model.MaterialLine{{Description: "Tablero", Quantity: "1", UnitPrice: "15000"}},
	})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, quote.ID, model.QuoteStatusAccepted)
	require.NoError(t, err)

	// Two callers race to convert the same quote into non-colliding
	// slots. Exactly one may win; the loser must see the claim.
	start := make(chan struct{})
	results := make(chan error, 2)
	convert := func(at time.Time) {
		<-start
		_, err := svc.Convert(ctx, quote.ID, at)
		results <- err
	}
	base := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	go convert(base)
	go convert(base.Add(4 * time.Hour))
	close(start)

	var succeeded, refused int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidInput)
			refused++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, refused)

	jobs, err := st.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1, "one accepted quote produces one job")
}

func TestQuoteService_Delete(t *testing.T) {
	st := newTestStore(t)
	svc := NewQuoteService(st, time.Minute)
	ctx := context.Background()

	seedQuote(t, st, model.Quote{ID: "q1"})

	require.NoError(t, svc.Delete(ctx, "q1"))
	assert.ErrorIs(t, svc.Delete(ctx, "q1"), ErrNotFound)
}
