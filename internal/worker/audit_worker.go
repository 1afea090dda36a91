// Package worker records mutation events into the audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"budget/internal/amqp"
	"budget/internal/store"
)

// AuditWorker consumes mutation events and appends them to the store's
// audit trail. It observes only: canonical rows are never touched here.
type AuditWorker struct {
	recorder store.AuditRecorder
	handled  atomic.Int64
}

func NewAuditWorker(recorder store.AuditRecorder) *AuditWorker {
	return &AuditWorker{recorder: recorder}
}

// HandleMutation processes a single mutation event from AMQP.
func (w *AuditWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	if err := w.recorder.RecordAuditEvent(ctx, msg.Entity, msg.Action, msg.EntityID); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	w.handled.Add(1)
	slog.InfoContext(ctx, "Audit event recorded",
		"entity", msg.Entity,
		"action", msg.Action,
		"entity_id", msg.EntityID)
	return nil
}

// Handled reports how many events this worker has recorded since start.
func (w *AuditWorker) Handled() int64 {
	return w.handled.Load()
}
