// Package http serves the JSON API consumed by the UI and voice pipeline.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget/internal/core"
	"budget/internal/nlq"
	"budget/internal/query"
)

// BudgetService is the coordinator surface the handlers need.
type BudgetService interface {
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	DeleteTransaction(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, id string) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListCategoriesWithSpent(ctx context.Context) ([]core.CategoryWithSpent, error)
	ImportReceiptItems(ctx context.Context, items []core.ReceiptItem) ([]core.Transaction, error)
}

// QueryGenerator turns transcribed voice text into query requests and
// receipt text into line items. Nil when no model is configured.
type QueryGenerator interface {
	GenerateQuery(ctx context.Context, text string) (nlq.QueryRequest, error)
	ExtractReceiptItems(ctx context.Context, text string) ([]core.ReceiptItem, error)
}

type Server struct {
	http.Server

	service BudgetService
	gate    *query.Gate
	nlq     QueryGenerator

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. nlqClient may be nil; the transcript endpoints then answer
// 503.
func NewServer(addr string, svc BudgetService, gate *query.Gate, nlqClient QueryGenerator) *Server {
	s := &Server{
		service:     svc,
		gate:        gate,
		nlq:         nlqClient,
		rateLimiter: newRateLimiter(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(securityHeaders)
	r.Use(s.limitMutations)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Post("/voice-query", s.handleVoiceQuery)
		r.Post("/voice-query/transcript", s.handleVoiceTranscript)
		r.Post("/receipts", s.handleImportReceipt)
	})

	s.Server = http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
