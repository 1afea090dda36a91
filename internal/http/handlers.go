package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"budget/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.service.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleListCategories returns categories with their derived spent totals.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.service.ListCategoriesWithSpent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.CategoryWithSpent{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.service.AddCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// voiceQueryRequest is what the voice pipeline posts: the generated SQL plus
// presentation metadata the server passes through unmodified.
type voiceQueryRequest struct {
	SQL           string `json:"sql"`
	Visualization string `json:"visualization"`
	GraphType     string `json:"graphType"`
	Description   string `json:"description"`
}

type voiceQueryResponse struct {
	Results       []map[string]any `json:"results"`
	Visualization string           `json:"visualization"`
	GraphType     string           `json:"graphType,omitempty"`
	Description   string           `json:"description"`
	SQL           string           `json:"sql,omitempty"`
}

func (s *Server) handleVoiceQuery(w http.ResponseWriter, r *http.Request) {
	var req voiceQueryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.gate.Execute(r.Context(), req.SQL)
	if err != nil {
		writeVoiceError(w, r, err, req.SQL)
		return
	}

	writeJSON(w, http.StatusOK, voiceQueryResponse{
		Results:       rows,
		Visualization: req.Visualization,
		GraphType:     req.GraphType,
		Description:   req.Description,
	})
}

// handleVoiceTranscript runs the full voice path server-side: transcribed
// text in, generated SQL through the gate, rows out.
func (s *Server) handleVoiceTranscript(w http.ResponseWriter, r *http.Request) {
	if s.nlq == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "voice queries are not configured"})
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	gen, err := s.nlq.GenerateQuery(r.Context(), req.Text)
	if err != nil {
		slog.ErrorContext(r.Context(), "Query generation failed", "error", err)
		writeError(w, r, err)
		return
	}

	rows, err := s.gate.Execute(r.Context(), gen.SQL)
	if err != nil {
		writeVoiceError(w, r, err, gen.SQL)
		return
	}

	writeJSON(w, http.StatusOK, voiceQueryResponse{
		Results:       rows,
		Visualization: gen.Visualization,
		GraphType:     gen.GraphType,
		Description:   gen.Description,
		SQL:           gen.SQL,
	})
}

// writeVoiceError attaches the query text to gate and storage failures so
// the voice UI can show what went wrong.
func writeVoiceError(w http.ResponseWriter, r *http.Request, err error, sql string) {
	var se *core.SecurityError
	if errors.As(err, &se) {
		writeError(w, r, err) // SecurityError already carries the text
		return
	}
	slog.ErrorContext(r.Context(), "Ad-hoc query failed", "error", err, "query", sql)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "query execution failed", SQL: sql})
}

// handleImportReceipt files receipt line items under the default food
// category. Callers either post pre-extracted items or raw OCR text for the
// model to extract.
func (s *Server) handleImportReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []core.ReceiptItem `json:"items"`
		Text  string             `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	items := req.Items
	if len(items) == 0 && strings.TrimSpace(req.Text) != "" {
		if s.nlq == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "receipt extraction is not configured"})
			return
		}
		extracted, err := s.nlq.ExtractReceiptItems(r.Context(), req.Text)
		if err != nil {
			slog.ErrorContext(r.Context(), "Receipt extraction failed", "error", err)
			writeError(w, r, err)
			return
		}
		items = extracted
	}
	if len(items) == 0 {
		writeError(w, r, &core.ValidationError{Field: "items", Reason: "must not be empty"})
		return
	}

	created, err := s.service.ImportReceiptItems(r.Context(), items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
