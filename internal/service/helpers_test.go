package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/buscapolo/fieldops/internal/model"
	"github.com/buscapolo/fieldops/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&store.Entry{}))
	return store.New(db)
}

func seedClient(t *testing.T, st *store.Store, client model.Client) {
	t.Helper()
	require.NoError(t, st.UpdateClients(context.Background(), func(clients []model.Client) ([]model.Client, error) {
		return append(clients, client), nil
	}))
}

func seedJob(t *testing.T, st *store.Store, job model.Job) {
	t.Helper()
	require.NoError(t, st.UpdateJobs(context.Background(), func(jobs []model.Job) ([]model.Job, error) {
		return append(jobs, job), nil
	}))
}

func seedQuote(t *testing.T, st *store.Store, quote model.Quote) {
	t.Helper()
	require.NoError(t, st.UpdateQuotes(context.Background(), func(quotes []model.Quote) ([]model.Quote, error) {
		return append(quotes, quote), nil
	}))
}

func fixedTime(value time.Time) func() time.Time {
	return func() time.Time { return value }
}
