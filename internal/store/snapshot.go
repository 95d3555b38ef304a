package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/buscapolo/fieldops/internal/model"
)

// SchemaVersion is stamped into every exported snapshot so a future format
// change can be migrated instead of guessed at.
const SchemaVersion = "1"

const keySchemaVersion = "schemaVersion"

// Export serializes the whole namespace as a flat object of key to raw
// stored value. Each collection value is the stored JSON string, so the
// file double-encodes arrays exactly like the device backup format did.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	var entries []Entry
	if err := s.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	snapshot := make(map[string]string, len(entries)+1)
	for _, entry := range entries {
		snapshot[entry.Key] = entry.Value
	}
	snapshot[keySchemaVersion] = SchemaVersion

	return json.Marshal(snapshot)
}

// Import restores a full snapshot. The entire file is validated first:
// every known collection value must parse into its record shape before a
// single destructive write happens. Only then is the namespace wiped and
// rewritten inside one transaction, so a bad file leaves the store exactly
// as it was.
func (s *Store) Import(ctx context.Context, data []byte) error {
	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("%w: snapshot is not a key-value object: %v", ErrCorruptData, err)
	}

	if raw, ok := snapshot[KeyJobs]; ok && raw != "" {
		if normalized, err := normalizeJobs(raw); err == nil {
			snapshot[KeyJobs] = normalized
		}
	}

	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.quotesMu.Lock()
	defer s.quotesMu.Unlock()
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("wipe namespace: %w", err)
		}
		for key, value := range snapshot {
			if key == keySchemaVersion {
				continue
			}
			if err := tx.Create(&Entry{Key: key, Value: value}).Error; err != nil {
				return fmt.Errorf("restore key %s: %w", key, err)
			}
		}
		return nil
	})
}

// normalizeJobs upgrades jobs from the device app's export shape, where a
// job's fecha is a bare YYYY-MM-DD string and the time of day lives in a
// separate hora field. Both are folded into one RFC3339 timestamp so the
// records parse as current jobs. Values already in the current shape pass
// through untouched.
func normalizeJobs(raw string) (string, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return "", err
	}

	changed := false
	for _, record := range records {
		rawDate, ok := record["fecha"]
		if !ok {
			continue
		}
		var date string
		if err := json.Unmarshal(rawDate, &date); err != nil {
			continue
		}
		if _, err := time.Parse(time.RFC3339, date); err == nil {
			continue
		}
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}

		clock := time.Time{}
		if rawClock, ok := record["hora"]; ok {
			var value string
			if err := json.Unmarshal(rawClock, &value); err == nil && value != "" {
				if parsed, err := time.Parse("15:04", value); err == nil {
					clock = parsed
				}
			}
			delete(record, "hora")
		}

		at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
		encoded, err := json.Marshal(at)
		if err != nil {
			return "", err
		}
		record["fecha"] = encoded
		changed = true
	}
	if !changed {
		return raw, nil
	}

	out, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func validateSnapshot(snapshot map[string]string) error {
	if version, ok := snapshot[keySchemaVersion]; ok && version != SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %q", ErrCorruptData, version)
	}

	checks := []struct {
		key   string
		parse func(string) error
	}{
		{KeyClients, func(raw string) error {
			var v []model.Client
			return json.Unmarshal([]byte(raw), &v)
		}},
		{KeyQuotes, func(raw string) error {
			var v []model.Quote
			return json.Unmarshal([]byte(raw), &v)
		}},
		{KeyJobs, func(raw string) error {
			var v []model.Job
			return json.Unmarshal([]byte(raw), &v)
		}},
		{KeySubscriptions, func(raw string) error {
			var v []model.PushSubscription
			return json.Unmarshal([]byte(raw), &v)
		}},
	}

	for _, check := range checks {
		raw, ok := snapshot[check.key]
		if !ok || raw == "" {
			continue
		}
		if err := check.parse(raw); err != nil {
			return fmt.Errorf("%w: key %s does not parse: %v", ErrCorruptData, check.key, err)
		}
	}
	return nil
}
