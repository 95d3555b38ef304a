package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buscapolo/fieldops/internal/model"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, src.SaveClients(ctx, []model.Client{
		{ID: "c1", FirstName: "María", LastName: "Gómez", Phone: "+541112345678", Address: "Av. Rivadavia 123"},
	}))
	require.NoError(t, src.SaveJobs(ctx, []model.Job{
		{ID: "j1", ClientID: "c1", ClientName: "María Gómez", Description: "Cambio de térmica"},
	}))
	require.NoError(t, src.SetValue(ctx, KeyLastDaily, "2026-03-10"))

	data, err := src.Export(ctx)
	require.NoError(t, err)

	var snapshot map[string]string
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, SchemaVersion, snapshot["schemaVersion"])
	assert.Contains(t, snapshot, KeyClients)
	assert.Contains(t, snapshot, KeyJobs)

	dst := newTestStore(t)
	require.NoError(t, dst.Import(ctx, data))

	clients, err := dst.LoadClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "María", clients[0].FirstName)

	jobs, err := dst.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Cambio de térmica", jobs[0].Description)

	marker, err := dst.GetValue(ctx, KeyLastDaily)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", marker)
}

func TestSnapshot_ImportReplacesExistingData(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, src.SaveClients(ctx, []model.Client{{ID: "new"}}))

	data, err := src.Export(ctx)
	require.NoError(t, err)

	dst := newTestStore(t)
	require.NoError(t, dst.SaveClients(ctx, []model.Client{{ID: "old1"}, {ID: "old2"}}))
	require.NoError(t, dst.SaveQuotes(ctx, []model.Quote{{ID: "oldQuote"}}))

	require.NoError(t, dst.Import(ctx, data))

	clients, err := dst.LoadClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "new", clients[0].ID)

	quotes, err := dst.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, quotes, "keys absent from the snapshot are wiped")
}

func TestSnapshot_ImportLegacyDeviceExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Device exports keep the job date and time in separate fields.
	jobs := `[{"id":"j1","clienteNombre":"María Gómez","trabajo":"Pintura","fecha":"2024-03-01","hora":"10:30","estadoPago":"Pendiente"}]`
	snapshot := map[string]string{
		"schemaVersion": SchemaVersion,
		KeyJobs:         jobs,
	}
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	require.NoError(t, s.Import(ctx, data))

	loaded, err := s.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "María Gómez", loaded[0].ClientName)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), loaded[0].ScheduledAt)
}

func TestSnapshot_BadFileLeavesStoreUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveClients(ctx, []model.Client{{ID: "c1"}}))

	testCases := []struct {
		name string
		data string
	}{
		{name: "not an object", data: `["nope"]`},
		{name: "collection does not parse", data: `{"clientes":"{broken","schemaVersion":"1"}`},
		{name: "unsupported schema version", data: `{"schemaVersion":"99"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Import(ctx, []byte(tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptData)

			clients, err := s.LoadClients(ctx)
			require.NoError(t, err)
			require.Len(t, clients, 1)
			assert.Equal(t, "c1", clients[0].ID)
		})
	}
}
