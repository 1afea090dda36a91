package nlq

import (
	"encoding/json"
	"fmt"
	"strings"

	"budget/internal/core"
)

// stripFences removes a surrounding markdown code fence, which models add
// despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseQueryRequest(raw string) (QueryRequest, error) {
	var req QueryRequest
	if err := json.Unmarshal([]byte(stripFences(raw)), &req); err != nil {
		return QueryRequest{}, err
	}

	if strings.TrimSpace(req.SQL) == "" {
		return QueryRequest{}, fmt.Errorf("response carries no sql")
	}
	switch req.Visualization {
	case "text":
		req.GraphType = ""
	case "graph":
		switch req.GraphType {
		case "bar", "line", "pie":
		default:
			return QueryRequest{}, fmt.Errorf("unknown graph type %q", req.GraphType)
		}
	default:
		return QueryRequest{}, fmt.Errorf("unknown visualization %q", req.Visualization)
	}
	return req, nil
}

func parseReceiptItems(raw string) ([]core.ReceiptItem, error) {
	var items []core.ReceiptItem
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, err
	}
	out := items[:0]
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" || item.Amount <= 0 {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
