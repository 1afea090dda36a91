package nlq

import "testing"

func TestParseQueryRequest(t *testing.T) {
	raw := `{"sql":"SELECT name, SUM(amount) as value FROM transactions t JOIN categories c ON t.category = c.id GROUP BY c.id","visualization":"graph","graphType":"pie","description":"Spending by category"}`

	req, err := parseQueryRequest(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Visualization != "graph" || req.GraphType != "pie" {
		t.Fatalf("unexpected metadata: %+v", req)
	}
}

func TestParseQueryRequestStripsFences(t *testing.T) {
	raw := "```json\n{\"sql\":\"SELECT * FROM transactions\",\"visualization\":\"text\",\"description\":\"All transactions\"}\n```"

	req, err := parseQueryRequest(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.SQL != "SELECT * FROM transactions" {
		t.Fatalf("unexpected sql: %q", req.SQL)
	}
	// graphType is meaningless for text answers.
	if req.GraphType != "" {
		t.Fatalf("graphType should be cleared for text, got %q", req.GraphType)
	}
}

func TestParseQueryRequestRejectsBadShapes(t *testing.T) {
	cases := []string{
		`not json`,
		`{"sql":"","visualization":"text"}`,
		`{"sql":"SELECT 1","visualization":"hologram"}`,
		`{"sql":"SELECT 1","visualization":"graph","graphType":"donut"}`,
	}
	for i, raw := range cases {
		if _, err := parseQueryRequest(raw); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseReceiptItems(t *testing.T) {
	raw := "```json\n[{\"description\":\"Coffee\",\"amount\":3.99},{\"description\":\"Sandwich\",\"amount\":8.5},{\"description\":\"\",\"amount\":2},{\"description\":\"Bag\",\"amount\":0}]\n```"

	items, err := parseReceiptItems(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Nameless and priceless lines are dropped.
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", items)
	}
	if items[0].Description != "Coffee" || items[0].Amount != 3.99 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestParseReceiptItemsRejectsNonArray(t *testing.T) {
	if _, err := parseReceiptItems(`{"description":"Coffee","amount":1}`); err == nil {
		t.Fatal("expected error for non-array response")
	}
}
