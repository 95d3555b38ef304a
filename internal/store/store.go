// Package store persists the record collections. Each collection lives as
// one serialized JSON array under its own key: there is no per-record
// mutation primitive, every logical update is load-all, transform in
// memory, save-all. The key names and value encoding match the mobile
// app's device storage so backups restore on either side.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buscapolo/fieldops/internal/model"
)

// Keys of the persisted namespace. The collection keys match the original
// device storage so an exported snapshot restores on either side unchanged.
const (
	KeyClients       = "clientes"
	KeyQuotes        = "presupuestos"
	KeyJobs          = "trabajos"
	KeySubscriptions = "pushSubscriptions"
	KeyLastDaily     = "lastDailyNotificationScheduled"
)

// ErrCorruptData marks stored content that is not well-formed JSON for its
// collection. Callers are expected to surface it as a recoverable error,
// never to crash on it.
var ErrCorruptData = errors.New("corrupt stored data")

// Entry is one row of the key-value namespace.
type Entry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "entries" }

// Store is the durable key-value namespace holding the collections.
//
// The raw Load*/Save* primitives carry the storage contract: whole-array
// replace, last save wins, no locking. The Update* helpers add
// single-writer serialization per collection on top, which is what every
// service mutation goes through.
type Store struct {
	db *gorm.DB

	clientsMu sync.Mutex
	quotesMu  sync.Mutex
	jobsMu    sync.Mutex
	subsMu    sync.Mutex
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) loadRaw(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *Store) saveRaw(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *Store) loadSlice(ctx context.Context, key string, out any) error {
	raw, ok, err := s.loadRaw(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: key %s: %v", ErrCorruptData, key, err)
	}
	return nil
}

func (s *Store) saveSlice(ctx context.Context, key string, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.saveRaw(ctx, key, string(data))
}

// LoadClients returns the clients collection, empty when absent.
func (s *Store) LoadClients(ctx context.Context) ([]model.Client, error) {
	clients := []model.Client{}
	if err := s.loadSlice(ctx, KeyClients, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// SaveClients replaces the whole clients collection. Last writer wins.
func (s *Store) SaveClients(ctx context.Context, clients []model.Client) error {
	return s.saveSlice(ctx, KeyClients, clients)
}

// UpdateClients runs a load-transform-save cycle under the collection's
// writer lock.
func (s *Store) UpdateClients(ctx context.Context, fn func([]model.Client) ([]model.Client, error)) error {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	clients, err := s.LoadClients(ctx)
	if err != nil {
		return err
	}
	clients, err = fn(clients)
	if err != nil {
		return err
	}
	return s.SaveClients(ctx, clients)
}

// LoadQuotes returns the quotes collection, empty when absent.
func (s *Store) LoadQuotes(ctx context.Context) ([]model.Quote, error) {
	quotes := []model.Quote{}
	if err := s.loadSlice(ctx, KeyQuotes, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// SaveQuotes replaces the whole quotes collection. Last writer wins.
func (s *Store) SaveQuotes(ctx context.Context, quotes []model.Quote) error {
	return s.saveSlice(ctx, KeyQuotes, quotes)
}

// UpdateQuotes runs a load-transform-save cycle under the collection's
// writer lock.
func (s *Store) UpdateQuotes(ctx context.Context, fn func([]model.Quote) ([]model.Quote, error)) error {
	s.quotesMu.Lock()
	defer s.quotesMu.Unlock()
	quotes, err := s.LoadQuotes(ctx)
	if err != nil {
		return err
	}
	quotes, err = fn(quotes)
	if err != nil {
		return err
	}
	return s.SaveQuotes(ctx, quotes)
}

// LoadJobs returns the jobs collection, empty when absent.
func (s *Store) LoadJobs(ctx context.Context) ([]model.Job, error) {
	jobs := []model.Job{}
	if err := s.loadSlice(ctx, KeyJobs, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// SaveJobs replaces the whole jobs collection. Last writer wins.
func (s *Store) SaveJobs(ctx context.Context, jobs []model.Job) error {
	return s.saveSlice(ctx, KeyJobs, jobs)
}

// UpdateJobs runs a load-transform-save cycle under the collection's
// writer lock.
func (s *Store) UpdateJobs(ctx context.Context, fn func([]model.Job) ([]model.Job, error)) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	jobs, err := s.LoadJobs(ctx)
	if err != nil {
		return err
	}
	jobs, err = fn(jobs)
	if err != nil {
		return err
	}
	return s.SaveJobs(ctx, jobs)
}

// LoadSubscriptions returns the registered push subscriptions.
func (s *Store) LoadSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	subs := []model.PushSubscription{}
	if err := s.loadSlice(ctx, KeySubscriptions, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateSubscriptions runs a load-transform-save cycle under the
// subscription writer lock.
func (s *Store) UpdateSubscriptions(ctx context.Context, fn func([]model.PushSubscription) ([]model.PushSubscription, error)) error {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	subs, err := s.LoadSubscriptions(ctx)
	if err != nil {
		return err
	}
	subs, err = fn(subs)
	if err != nil {
		return err
	}
	return s.saveSlice(ctx, KeySubscriptions, subs)
}

// GetValue reads a plain string key such as the last-daily-reminder marker.
func (s *Store) GetValue(ctx context.Context, key string) (string, error) {
	raw, _, err := s.loadRaw(ctx, key)
	return raw, err
}

// SetValue writes a plain string key.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	return s.saveRaw(ctx, key, value)
}
