// Package nlq turns transcribed voice commands into read-only SQL requests
// and extracts line items from receipt OCR text. Model output is advisory
// only: generated SQL still passes through the query gate, and receipt items
// still pass through the coordinator's validation.
package nlq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"budget/internal/cache"
	"budget/internal/core"
)

// QueryRequest is the model's answer to a voice command: a SQL query over
// the two canonical tables plus presentation metadata the core passes
// through unmodified.
type QueryRequest struct {
	SQL           string `json:"sql"`
	Visualization string `json:"visualization"` // "graph" | "text"
	GraphType     string `json:"graphType"`     // "bar" | "line" | "pie"
	Description   string `json:"description"`
}

const queryPrompt = `You translate questions about personal spending into SQLite queries.

The database has exactly two tables:
  categories(id TEXT, name TEXT, budget REAL)
  transactions(id TEXT, description TEXT, amount REAL, category TEXT, date TEXT)
transactions.category references categories.id. date is 'YYYY-MM-DD'.

Return ONLY a JSON object with these fields:
  "sql": a single SELECT statement answering the question. For charts, alias
         the label column as "name" and the numeric column as "value".
  "visualization": "graph" when a chart fits the answer, otherwise "text".
  "graphType": "bar", "line" or "pie" when visualization is "graph".
  "description": a short sentence describing the result.

Never generate anything other than a SELECT statement.

Question: %s`

const receiptPrompt = `Extract the purchased items from this receipt text.
Return ONLY a JSON array where each item has "description" and "amount"
fields. The amount must be a number, not a string. Only include items with a
clear price.

Receipt text:
%s`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api   chatCompleter
	model string
	cache *cache.LRU[QueryRequest]
}

func NewClient(apiKey, model string, cacheSize int, cacheTTL time.Duration) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
		cache: cache.NewLRU[QueryRequest](cacheSize, cacheTTL),
	}
}

// GenerateQuery asks the model for a QueryRequest answering the transcribed
// question. Repeated questions are served from the cache; generation is
// read-only so a cached answer can never go stale in a harmful way.
func (c *Client) GenerateQuery(ctx context.Context, text string) (QueryRequest, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		return QueryRequest{}, &core.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if cached, ok := c.cache.Get(key); ok {
		slog.DebugContext(ctx, "NLQ cache hit", "text", text)
		return cached, nil
	}

	raw, err := c.complete(ctx, fmt.Sprintf(queryPrompt, text))
	if err != nil {
		return QueryRequest{}, fmt.Errorf("generate query: %w", err)
	}

	req, err := parseQueryRequest(raw)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse model query response", "error", err, "raw", raw)
		return QueryRequest{}, fmt.Errorf("parse query response: %w", err)
	}

	c.cache.Set(key, req)
	slog.InfoContext(ctx, "Generated ad-hoc query from transcript",
		"visualization", req.Visualization,
		"graph_type", req.GraphType)
	return req, nil
}

// ExtractReceiptItems pulls purchasable line items out of receipt OCR text.
func (c *Client) ExtractReceiptItems(ctx context.Context, text string) ([]core.ReceiptItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &core.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	raw, err := c.complete(ctx, fmt.Sprintf(receiptPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("extract receipt items: %w", err)
	}

	items, err := parseReceiptItems(raw)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse model receipt response", "error", err, "raw", raw)
		return nil, fmt.Errorf("parse receipt response: %w", err)
	}
	return items, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
