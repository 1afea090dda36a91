// Package memory provides an in-memory Store for development and tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"budget/internal/core"
)

type Store struct {
	mu   sync.Mutex
	cats []core.Category
	txs  []core.Transaction
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store pre-populated with the given collections,
// useful for wiring up a dev backend with known data.
func NewSeeded(cats []core.Category, txs []core.Transaction) *Store {
	return &Store{
		cats: append([]core.Category(nil), cats...),
		txs:  append([]core.Transaction(nil), txs...),
	}
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) CreateCategory(_ context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := core.Category{ID: uuid.NewString(), Name: in.Name, Budget: in.Budget}
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) CreateTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Transaction{
		ID:          uuid.NewString(),
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
	}
	s.txs = append(s.txs, t)
	return t, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cats {
		if c.ID == id {
			s.cats = append(s.cats[:i], s.cats[i+1:]...)
			return nil
		}
	}
	return nil // unknown id is a no-op
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.txs {
		if t.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Query is unsupported: ad-hoc SQL needs the sqlite backend.
func (s *Store) Query(_ context.Context, _ string) ([]map[string]any, error) {
	return nil, &core.StorageError{Op: "ad-hoc query", Err: errors.New("not supported by the memory backend")}
}

func (s *Store) Close() error { return nil }
