package db

import (
	"fmt"
	"log/slog"

	"github.com/smmops/panel/internal/models"
)

// InsertMappedServices stores a batch of imported services in one transaction.
func (d *DB) InsertMappedServices(services []models.MappedService) error {
	if len(services) == 0 {
		return nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin catalog insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO catalog (id, name, platform, category, price, cost, min_order, max_order,
			description, provider_id, provider_name, provider_service_id, status, profit_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, platform = excluded.platform, category = excluded.category,
			price = excluded.price, cost = excluded.cost, min_order = excluded.min_order,
			max_order = excluded.max_order, description = excluded.description,
			status = excluded.status, profit_pct = excluded.profit_pct,
			updated_at = datetime('now')
	`)
	if err != nil {
		return fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range services {
		if _, err := stmt.Exec(
			s.ID, s.Name, s.Platform, s.Category, s.Price, s.Cost, s.Min, s.Max,
			s.Description, s.ProviderID, s.ProviderName, s.ProviderServiceID, s.Status, s.ProfitPct,
		); err != nil {
			return fmt.Errorf("insert catalog service %q: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog insert: %w", err)
	}

	slog.Info("catalog services stored", "count", len(services))
	return nil
}

// ListCatalog returns all catalog entries, optionally filtered by provider.
func (d *DB) ListCatalog(providerID string) ([]models.MappedService, error) {
	query := `SELECT id, name, platform, category, price, cost, min_order, max_order,
		description, provider_id, provider_name, provider_service_id, status, profit_pct
		FROM catalog`
	args := []any{}
	if providerID != "" {
		query += " WHERE provider_id = ?"
		args = append(args, providerID)
	}
	query += " ORDER BY platform, category, name"

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var result []models.MappedService
	for rows.Next() {
		var s models.MappedService
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Platform, &s.Category, &s.Price, &s.Cost, &s.Min, &s.Max,
			&s.Description, &s.ProviderID, &s.ProviderName, &s.ProviderServiceID, &s.Status, &s.ProfitPct,
		); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}

	return result, nil
}

// UpdateCatalogService applies an edited price/status to one catalog entry.
func (d *DB) UpdateCatalogService(s models.MappedService) error {
	res, err := d.conn.Exec(`
		UPDATE catalog SET name = ?, platform = ?, category = ?, price = ?, min_order = ?,
			max_order = ?, description = ?, status = ?, profit_pct = ?, updated_at = datetime('now')
		WHERE id = ?`,
		s.Name, s.Platform, s.Category, s.Price, s.Min, s.Max, s.Description, s.Status, s.ProfitPct, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update catalog service %q: %w", s.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("catalog service %q not found", s.ID)
	}
	return nil
}

// DeleteCatalogService removes one catalog entry.
func (d *DB) DeleteCatalogService(id string) error {
	if _, err := d.conn.Exec("DELETE FROM catalog WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete catalog service %q: %w", id, err)
	}
	return nil
}
