// Package query exposes a read-only ad-hoc query path over the store for
// the voice-query pipeline.
package query

import (
	"context"
	"log/slog"
	"strings"

	"budget/internal/core"
)

// Executor is the slice of the store the gate needs.
type Executor interface {
	Query(ctx context.Context, sql string) ([]map[string]any, error)
}

// Gate validates that a caller-supplied query is a read before executing it
// verbatim. The check is a syntactic prefix match on the normalized text; it
// blocks plain mutations but is not a full parser, so it must not be treated
// as a complete injection defense for untrusted input.
type Gate struct {
	exec Executor
}

func NewGate(exec Executor) *Gate {
	return &Gate{exec: exec}
}

// Execute runs queryText against the canonical collections and returns the
// rows unmodified. Anything that does not start with the read keyword is
// rejected with a SecurityError carrying the offending text.
func (g *Gate) Execute(ctx context.Context, queryText string) ([]map[string]any, error) {
	normalized := strings.ToLower(strings.TrimSpace(queryText))
	if !strings.HasPrefix(normalized, "select") {
		slog.WarnContext(ctx, "Rejected non-read ad-hoc query", "query", queryText)
		return nil, &core.SecurityError{Query: queryText}
	}

	rows, err := g.exec.Query(ctx, queryText)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Ad-hoc query executed", "rows", len(rows))
	return rows, nil
}
