package core

import (
	"math"
	"strings"
	"time"
)

type (
	// Transaction is a single recorded expense. Expenses are positive
	// amounts by convention. Category holds the id of a Category and is
	// never revalidated after creation; deleting the referenced Category
	// leaves the transaction dangling.
	Transaction struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
	}

	// Category is a named budget bucket with a monthly ceiling.
	Category struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Budget float64 `json:"budget"`
	}

	// CategoryWithSpent is the derived read-only view of a Category.
	// It is recomputed from the canonical collections, never stored.
	CategoryWithSpent struct {
		Category
		Spent float64 `json:"spent"`
	}

	// TransactionInput carries caller-supplied fields for a new transaction.
	TransactionInput struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
	}

	// CategoryInput carries caller-supplied fields for a new category.
	CategoryInput struct {
		Name   string  `json:"name"`
		Budget float64 `json:"budget"`
	}

	// ReceiptItem is one line extracted from a scanned receipt.
	ReceiptItem struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
	}
)

const dateLayout = "2006-01-02"

func (in TransactionInput) Validate() error {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return &ValidationError{Field: "amount", Reason: "must be a finite number"}
	}
	if in.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if in.Date != "" {
		if _, err := time.Parse(dateLayout, in.Date); err != nil {
			return &ValidationError{Field: "date", Reason: "must be an ISO-8601 date (YYYY-MM-DD)"}
		}
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if math.IsNaN(in.Budget) || math.IsInf(in.Budget, 0) {
		return &ValidationError{Field: "budget", Reason: "must be a finite number"}
	}
	if in.Budget < 0 {
		return &ValidationError{Field: "budget", Reason: "must not be negative"}
	}
	return nil
}

// Today returns the current date in the wire format used by Transaction.Date.
func Today() string {
	return time.Now().Format(dateLayout)
}
