// Package services coordinates validated mutations against the store with
// recomputation of the derived spending view.
package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"budget/internal/core"
	"budget/internal/store"
)

// MutationPublisher receives a notification after a mutation has committed.
// Publishing is best effort and never fails the originating request.
type MutationPublisher interface {
	PublishMutation(ctx context.Context, entity, action, entityID string) error
}

// BudgetService sequences each mutation as one observable unit: validate,
// apply to the store, recompute the derived view, then notify. Writes are
// serialized so the derived view is never read mid-mutation; reads see the
// snapshot as of the last completed mutation.
type BudgetService struct {
	store     store.Store
	publisher MutationPublisher

	writeMu sync.Mutex // one in-flight mutation at a time

	snapMu   sync.RWMutex
	snapshot []core.CategoryWithSpent
	computed bool
}

func NewBudgetService(st store.Store, publisher MutationPublisher) *BudgetService {
	return &BudgetService{store: st, publisher: publisher}
}

// AddTransaction validates the referenced category against the current
// category set before the store create. A miss rejects the request with no
// store mutation and no recomputation.
func (s *BudgetService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if in.Date == "" {
		in.Date = core.Today()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if !categoryExists(cats, in.Category) {
		return core.Transaction{}, &core.ReferenceError{Category: in.Category}
	}

	t, err := s.store.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.recompute(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.notify(ctx, "transaction", "created", t.ID)

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"description", t.Description,
		"amount", t.Amount,
		"category", t.Category)
	return t, nil
}

func (s *BudgetService) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return core.Category{}, err
	}

	if err := s.recompute(ctx); err != nil {
		return core.Category{}, err
	}
	s.notify(ctx, "category", "created", c.ID)

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name, "budget", c.Budget)
	return c, nil
}

func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	if err := s.recompute(ctx); err != nil {
		return err
	}
	s.notify(ctx, "transaction", "deleted", id)
	return nil
}

// DeleteCategory does not cascade: transactions referencing the deleted
// category stay in the store and drop out of every aggregated total.
func (s *BudgetService) DeleteCategory(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if err := s.recompute(ctx); err != nil {
		return err
	}
	s.notify(ctx, "category", "deleted", id)
	return nil
}

// ListCategoriesWithSpent returns the derived view as of the last completed
// mutation, computing it from the store on first use.
func (s *BudgetService) ListCategoriesWithSpent(ctx context.Context) ([]core.CategoryWithSpent, error) {
	s.snapMu.RLock()
	if s.computed {
		snap := append([]core.CategoryWithSpent(nil), s.snapshot...)
		s.snapMu.RUnlock()
		return snap, nil
	}
	s.snapMu.RUnlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.recompute(ctx); err != nil {
		return nil, err
	}

	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return append([]core.CategoryWithSpent(nil), s.snapshot...), nil
}

func (s *BudgetService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// ImportReceiptItems files scanned receipt line items as transactions under
// the default "Food" category, located by case-insensitive name.
func (s *BudgetService) ImportReceiptItems(ctx context.Context, items []core.ReceiptItem) ([]core.Transaction, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	var food *core.Category
	for i := range cats {
		if strings.EqualFold(cats[i].Name, "food") {
			food = &cats[i]
			break
		}
	}
	if food == nil {
		return nil, &core.ReferenceError{Category: "food"}
	}

	date := core.Today()
	created := make([]core.Transaction, 0, len(items))
	for _, item := range items {
		t, err := s.AddTransaction(ctx, core.TransactionInput{
			Description: item.Description,
			Amount:      item.Amount,
			Category:    food.ID,
			Date:        date,
		})
		if err != nil {
			return created, err
		}
		created = append(created, t)
	}
	return created, nil
}

// recompute rebuilds the derived snapshot from the canonical collections.
// Callers hold writeMu, so the snapshot can never diverge from the store.
func (s *BudgetService) recompute(ctx context.Context) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return err
	}

	snap := core.CategoriesWithSpent(cats, txs)

	s.snapMu.Lock()
	s.snapshot = snap
	s.computed = true
	s.snapMu.Unlock()
	return nil
}

func (s *BudgetService) notify(ctx context.Context, entity, action, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMutation(ctx, entity, action, id); err != nil {
		// The mutation has committed and the view is recomputed; a lost
		// event only degrades the audit trail.
		slog.WarnContext(ctx, "Failed to publish mutation event",
			"entity", entity, "action", action, "id", id, "error", err)
	}
}

func categoryExists(cats []core.Category, id string) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *BudgetService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
