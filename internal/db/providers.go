package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smmops/panel/internal/models"
)

// providersKey is the KV entry holding the JSON-serialized provider list.
const providersKey = "providers"

// GetValue retrieves a raw KV entry. Returns sql.ErrNoRows when absent.
func (d *DB) GetValue(key string) (string, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get kv %q: %w", key, err)
	}
	return value, nil
}

// SetValue upserts a raw KV entry.
func (d *DB) SetValue(key, value string) error {
	_, err := d.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set kv %q: %w", key, err)
	}
	return nil
}

// LoadProviders returns the persisted provider list.
// A missing entry or an unparseable payload degrades to an empty list;
// provider configuration is recoverable state, not a startup blocker.
func (d *DB) LoadProviders() ([]models.Provider, error) {
	raw, err := d.GetValue(providersKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Provider{}, nil
		}
		return nil, err
	}

	var providers []models.Provider
	if err := json.Unmarshal([]byte(raw), &providers); err != nil {
		slog.Warn("provider list is unparseable, starting empty", "error", err)
		return []models.Provider{}, nil
	}

	slog.Debug("providers loaded", "count", len(providers))
	return providers, nil
}

// SaveProviders serializes and persists the full provider list.
func (d *DB) SaveProviders(providers []models.Provider) error {
	raw, err := json.Marshal(providers)
	if err != nil {
		return fmt.Errorf("marshal providers: %w", err)
	}

	if err := d.SetValue(providersKey, string(raw)); err != nil {
		return fmt.Errorf("save providers: %w", err)
	}

	slog.Debug("providers saved", "count", len(providers))
	return nil
}
