package core

// CategoriesWithSpent derives the per-category spending view from the two
// canonical collections. For each category, spent is the sum of Amount over
// transactions whose Category matches its id; transactions referencing a
// deleted category match nothing and are excluded from every total.
//
// The function is pure and recomputes from scratch on every call. Collections
// are small, so full recomputation is cheaper than keeping an incremental
// total honest. Summation is plain float64 addition; totals carry whatever
// rounding error that accumulates.
func CategoriesWithSpent(cats []Category, txs []Transaction) []CategoryWithSpent {
	spent := make(map[string]float64, len(cats))
	for _, c := range cats {
		spent[c.ID] = 0
	}
	for _, t := range txs {
		if _, ok := spent[t.Category]; ok {
			spent[t.Category] += t.Amount
		}
	}

	out := make([]CategoryWithSpent, len(cats))
	for i, c := range cats {
		out[i] = CategoryWithSpent{Category: c, Spent: spent[c.ID]}
	}
	return out
}
