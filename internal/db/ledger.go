package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
)

// UpsertProfile creates or updates a customer profile.
func (d *DB) UpsertProfile(p models.Profile) error {
	_, err := d.conn.Exec(`
		INSERT INTO profiles (id, email, balance, role, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email, balance = excluded.balance,
			role = excluded.role, status = excluded.status`,
		p.ID, p.Email, p.Balance, p.Role, p.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", p.ID, err)
	}
	return nil
}

// GetProfile fetches one profile by id.
func (d *DB) GetProfile(id string) (models.Profile, error) {
	var p models.Profile
	err := d.conn.QueryRow(
		"SELECT id, email, balance, role, status, created_at FROM profiles WHERE id = ?", id,
	).Scan(&p.ID, &p.Email, &p.Balance, &p.Role, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, config.ErrProfileNotFound
		}
		return models.Profile{}, fmt.Errorf("get profile %q: %w", id, err)
	}
	return p, nil
}

// ListProfiles returns all profiles ordered by creation time.
func (d *DB) ListProfiles() ([]models.Profile, error) {
	rows, err := d.conn.Query("SELECT id, email, balance, role, status, created_at FROM profiles ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var result []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Balance, &p.Role, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return result, nil
}

// InsertTransaction records a new pending ledger transaction and returns its id.
func (d *DB) InsertTransaction(t models.Transaction) (int, error) {
	res, err := d.conn.Exec(`
		INSERT INTO transactions (profile_id, type, amount, method, note, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ProfileID, t.Type, t.Amount, t.Method, t.Note, t.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}
	return int(id), nil
}

// GetTransaction fetches one transaction by id.
func (d *DB) GetTransaction(id int) (models.Transaction, error) {
	var t models.Transaction
	err := d.conn.QueryRow(`
		SELECT id, profile_id, type, amount, method, note, status, created_at, updated_at
		FROM transactions WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProfileID, &t.Type, &t.Amount, &t.Method, &t.Note, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns transactions, optionally filtered by profile.
func (d *DB) ListTransactions(profileID string) ([]models.Transaction, error) {
	query := `SELECT id, profile_id, type, amount, method, note, status, created_at, updated_at
		FROM transactions`
	args := []any{}
	if profileID != "" {
		query += " WHERE profile_id = ?"
		args = append(args, profileID)
	}
	query += " ORDER BY id DESC"

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.Type, &t.Amount, &t.Method, &t.Note,
			&t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return result, nil
}

// SettleTransaction moves a pending transaction to completed or cancelled,
// adjusting the profile balance atomically on completion.
func (d *DB) SettleTransaction(id int, status models.TransactionStatus) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin settle: %w", err)
	}
	defer tx.Rollback()

	var t models.Transaction
	err = tx.QueryRow(
		"SELECT id, profile_id, type, amount, status FROM transactions WHERE id = ?", id,
	).Scan(&t.ID, &t.ProfileID, &t.Type, &t.Amount, &t.Status)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	if t.Status != models.TransactionPending {
		return fmt.Errorf("%w: transaction %d is %s", config.ErrTransactionSettled, id, t.Status)
	}

	if status == models.TransactionCompleted {
		delta := t.Amount
		if t.Type == models.TransactionDebit {
			delta = -t.Amount
		}
		if _, err := tx.Exec("UPDATE profiles SET balance = balance + ? WHERE id = ?", delta, t.ProfileID); err != nil {
			return fmt.Errorf("apply balance delta: %w", err)
		}
	}

	if _, err := tx.Exec(
		"UPDATE transactions SET status = ?, updated_at = datetime('now') WHERE id = ?",
		status, id,
	); err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle: %w", err)
	}
	return nil
}

// ListPaymentOptions returns configured deposit methods.
func (d *DB) ListPaymentOptions() ([]models.PaymentOption, error) {
	rows, err := d.conn.Query("SELECT id, name, details, enabled FROM payment_options ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query payment options: %w", err)
	}
	defer rows.Close()

	var result []models.PaymentOption
	for rows.Next() {
		var p models.PaymentOption
		if err := rows.Scan(&p.ID, &p.Name, &p.Details, &p.Enabled); err != nil {
			return nil, fmt.Errorf("scan payment option row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment option rows: %w", err)
	}
	return result, nil
}

// UpsertPaymentOption creates or updates a deposit method. A zero ID inserts.
func (d *DB) UpsertPaymentOption(p models.PaymentOption) (int, error) {
	if p.ID == 0 {
		res, err := d.conn.Exec(
			"INSERT INTO payment_options (name, details, enabled) VALUES (?, ?, ?)",
			p.Name, p.Details, p.Enabled,
		)
		if err != nil {
			return 0, fmt.Errorf("insert payment option: %w", err)
		}
		id, _ := res.LastInsertId()
		return int(id), nil
	}

	if _, err := d.conn.Exec(
		"UPDATE payment_options SET name = ?, details = ?, enabled = ? WHERE id = ?",
		p.Name, p.Details, p.Enabled, p.ID,
	); err != nil {
		return 0, fmt.Errorf("update payment option %d: %w", p.ID, err)
	}
	return p.ID, nil
}
