package core

import "testing"

func TestCategoriesWithSpent(t *testing.T) {
	cats := []Category{
		{ID: "c1", Name: "Food", Budget: 200},
		{ID: "c2", Name: "Transport", Budget: 100},
		{ID: "c3", Name: "Fun", Budget: 50},
	}
	txs := []Transaction{
		{ID: "t1", Description: "Lunch", Amount: 10, Category: "c1", Date: "2024-01-05"},
		{ID: "t2", Description: "Dinner", Amount: 20, Category: "c1", Date: "2024-01-06"},
		{ID: "t3", Description: "Bus", Amount: 5, Category: "c2", Date: "2024-01-06"},
	}

	got := CategoriesWithSpent(cats, txs)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Output order follows the category list.
	if got[0].ID != "c1" || got[1].ID != "c2" || got[2].ID != "c3" {
		t.Fatalf("unexpected order: %v", got)
	}
	if got[0].Spent != 30 {
		t.Fatalf("spent(c1) = %v, want 30", got[0].Spent)
	}
	if got[1].Spent != 5 {
		t.Fatalf("spent(c2) = %v, want 5", got[1].Spent)
	}
	if got[2].Spent != 0 {
		t.Fatalf("spent(c3) = %v, want 0 when no transaction matches", got[2].Spent)
	}
	if got[0].Name != "Food" || got[0].Budget != 200 {
		t.Fatalf("category fields must pass through unchanged: %+v", got[0])
	}
}

func TestCategoriesWithSpentExcludesDangling(t *testing.T) {
	cats := []Category{{ID: "c2", Name: "Transport", Budget: 100}}
	txs := []Transaction{
		{ID: "t1", Amount: 42, Category: "c1"}, // c1 was deleted
		{ID: "t2", Amount: 5, Category: "c2"},
	}

	got := CategoriesWithSpent(cats, txs)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	// The dangling amount must not be attributed to any remaining category.
	if got[0].Spent != 5 {
		t.Fatalf("spent(c2) = %v, want 5", got[0].Spent)
	}
}

func TestCategoriesWithSpentEmpty(t *testing.T) {
	if got := CategoriesWithSpent(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	got := CategoriesWithSpent(nil, []Transaction{{ID: "t1", Amount: 1, Category: "c1"}})
	if len(got) != 0 {
		t.Fatalf("transactions without categories produce no rows, got %v", got)
	}
}

func TestCategoriesWithSpentFloatSummation(t *testing.T) {
	// Totals use plain float64 addition with no currency rounding; the
	// accumulated error is part of the contract.
	cats := []Category{{ID: "c1", Name: "Food", Budget: 10}}
	txs := make([]Transaction, 10)
	for i := range txs {
		txs[i] = Transaction{ID: "t", Amount: 0.1, Category: "c1"}
	}

	var want float64
	for range txs {
		want += 0.1
	}

	got := CategoriesWithSpent(cats, txs)
	if got[0].Spent != want {
		t.Fatalf("spent = %v, want the raw float sum %v", got[0].Spent, want)
	}
	if got[0].Spent == 1.0 {
		t.Fatalf("ten 0.1 additions should not sum to exactly 1.0 in float64")
	}
}
