package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"budget/internal/core"
)

// SQLiteStore persists the canonical collections in a local SQLite file.
// The schema deliberately carries no foreign key enforcement: referential
// integrity is checked by the service layer before a write reaches here.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, budget FROM categories`)
	if err != nil {
		return nil, &core.StorageError{Op: "list categories", Err: err}
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Budget); err != nil {
			return nil, &core.StorageError{Op: "scan category", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "list categories", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description, amount, category, date FROM transactions`)
	if err != nil {
		return nil, &core.StorageError{Op: "list transactions", Err: err}
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount, &t.Category, &t.Date); err != nil {
			return nil, &core.StorageError{Op: "scan transaction", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "list transactions", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	c := core.Category{ID: uuid.NewString(), Name: in.Name, Budget: in.Budget}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, budget) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Budget)
	if err != nil {
		return core.Category{}, &core.StorageError{Op: "create category", Err: err}
	}

	slog.InfoContext(ctx, "Category saved", "id", c.ID, "name", c.Name, "budget", c.Budget)
	return c, nil
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, description, amount, category, date) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount, t.Category, t.Date)
	if err != nil {
		return core.Transaction{}, &core.StorageError{Op: "create transaction", Err: err}
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"description", t.Description,
		"amount", t.Amount,
		"category", t.Category)
	return t, nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	// Deleting an unknown id is a no-op, and transactions referencing the
	// category are left in place as dangling references.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return &core.StorageError{Op: "delete category", Err: err}
	}
	return nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return &core.StorageError{Op: "delete transaction", Err: err}
	}
	return nil
}

// Query runs an arbitrary read query and returns rows as column-to-value
// maps, since the shape of an ad-hoc result set is not known statically.
func (s *SQLiteStore) Query(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &core.StorageError{Op: "ad-hoc query", Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &core.StorageError{Op: "ad-hoc query columns", Err: err}
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &core.StorageError{Op: "ad-hoc query scan", Err: err}
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "ad-hoc query", Err: err}
	}
	return out, nil
}

// RecordAuditEvent implements AuditRecorder for the audit worker.
func (s *SQLiteStore) RecordAuditEvent(ctx context.Context, entity, action, entityID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (entity, action, entity_id, occurred_at) VALUES (?, ?, ?, ?)`,
		entity, action, entityID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &core.StorageError{Op: "record audit event", Err: err}
	}
	return nil
}
