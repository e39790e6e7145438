package db

import (
	"fmt"
	"log/slog"
)

// ProviderHealthRow mirrors one row of the provider_health table.
type ProviderHealthRow struct {
	ProviderID       string `json:"providerId"`
	ProviderName     string `json:"providerName"`
	Status           string `json:"status"`
	CircuitState     string `json:"circuitState"`
	ConsecutiveFails int    `json:"consecutiveFails"`
	LastSuccess      string `json:"lastSuccess"`
	LastError        string `json:"lastError"`
	LastErrorMsg     string `json:"lastErrorMsg"`
	LatencyMS        int64  `json:"latencyMs"`
}

// UpsertProviderHealth records the latest health observation for a provider.
func (d *DB) UpsertProviderHealth(row ProviderHealthRow) error {
	_, err := d.conn.Exec(`
		INSERT INTO provider_health (provider_id, provider_name, status, circuit_state,
			consecutive_fails, last_success, last_error, last_error_msg, latency_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(provider_id) DO UPDATE SET
			provider_name = excluded.provider_name,
			status = excluded.status,
			circuit_state = excluded.circuit_state,
			consecutive_fails = excluded.consecutive_fails,
			last_success = excluded.last_success,
			last_error = excluded.last_error,
			last_error_msg = excluded.last_error_msg,
			latency_ms = excluded.latency_ms,
			updated_at = excluded.updated_at`,
		row.ProviderID, row.ProviderName, row.Status, row.CircuitState,
		row.ConsecutiveFails, row.LastSuccess, row.LastError, row.LastErrorMsg, row.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("upsert provider health %q: %w", row.ProviderID, err)
	}

	slog.Debug("provider health recorded",
		"providerId", row.ProviderID,
		"status", row.Status,
		"circuitState", row.CircuitState,
	)
	return nil
}

// GetAllProviderHealth returns every recorded provider health row.
func (d *DB) GetAllProviderHealth() ([]ProviderHealthRow, error) {
	rows, err := d.conn.Query(`
		SELECT provider_id, provider_name, status, circuit_state, consecutive_fails,
			last_success, last_error, last_error_msg, latency_ms
		FROM provider_health ORDER BY provider_name`)
	if err != nil {
		return nil, fmt.Errorf("query provider health: %w", err)
	}
	defer rows.Close()

	var result []ProviderHealthRow
	for rows.Next() {
		var r ProviderHealthRow
		if err := rows.Scan(&r.ProviderID, &r.ProviderName, &r.Status, &r.CircuitState,
			&r.ConsecutiveFails, &r.LastSuccess, &r.LastError, &r.LastErrorMsg, &r.LatencyMS); err != nil {
			return nil, fmt.Errorf("scan provider health row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider health rows: %w", err)
	}

	return result, nil
}

// DeleteProviderHealth drops the health row for a removed provider.
func (d *DB) DeleteProviderHealth(providerID string) error {
	if _, err := d.conn.Exec("DELETE FROM provider_health WHERE provider_id = ?", providerID); err != nil {
		return fmt.Errorf("delete provider health %q: %w", providerID, err)
	}
	return nil
}
