// Package store holds the canonical transaction and category collections.
// It performs no derived computation and no referential checks; those belong
// to the coordinating service layer.
package store

import (
	"context"

	"budget/internal/core"
)

// Store is the port the rest of the application talks to. Implementations
// assign ids on create and treat delete of an unknown id as a no-op.
type Store interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)

	CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)

	DeleteCategory(ctx context.Context, id string) error
	DeleteTransaction(ctx context.Context, id string) error

	// Query executes a caller-supplied read query and returns rows as
	// opaque column-to-value maps. The read-only guarantee lives in the
	// query gate, not here.
	Query(ctx context.Context, sql string) ([]map[string]any, error)

	Close() error
}

// AuditRecorder is implemented by stores that can persist mutation events
// for the audit worker. The memory backend does not implement it.
type AuditRecorder interface {
	RecordAuditEvent(ctx context.Context, entity, action, entityID string) error
}
