// Package worker mirrors expense additions to an external spreadsheet.
//
// The worker runs as its own process. It does not share the server's
// in-memory ledger; it re-reads the expenses slot from the shared kv store
// for every message, so a restart or a lagging queue never serves stale
// rows.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"lastapp/internal/amqp"
	"lastapp/internal/core"
	"lastapp/internal/kv"
	"lastapp/internal/ledger"
)

// ExpenseAppender is the outbound port to the spreadsheet mirror.
type ExpenseAppender interface {
	AppendExpense(ctx context.Context, e core.Expense) error
}

type SyncWorker struct {
	store kv.Store
	out   ExpenseAppender
}

func NewSyncWorker(store kv.Store, out ExpenseAppender) *SyncWorker {
	return &SyncWorker{
		store: store,
		out:   out,
	}
}

// HandleChange processes one ledger change message. Only expense additions
// reach the mirror; budget changes and deletes are acknowledged and
// skipped (the sheet is append-only).
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Entity != amqp.EntityExpense || msg.Op != amqp.OpAdd {
		slog.InfoContext(ctx, "Skipping change message",
			"entity", msg.Entity,
			"op", msg.Op,
			"id", msg.ID)
		return nil
	}

	expense, err := w.lookupExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("lookup expense %s: %w", msg.ID, err)
	}
	if expense == nil {
		// Deleted before the mirror caught up; nothing to append.
		slog.InfoContext(ctx, "Expense no longer in ledger, skipping", "id", msg.ID)
		return nil
	}

	if err := w.out.AppendExpense(ctx, *expense); err != nil {
		return fmt.Errorf("append expense %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		"id", expense.ID,
		"description", expense.Description,
		"amount_cents", expense.Amount.Cents,
		"category", expense.Category)

	return nil
}

func (w *SyncWorker) lookupExpense(ctx context.Context, id string) (*core.Expense, error) {
	data, err := w.store.Get(ctx, ledger.SlotExpenses)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var expenses []core.Expense
	if err := json.Unmarshal(data, &expenses); err != nil {
		return nil, fmt.Errorf("decode expenses slot: %w", err)
	}

	for i := range expenses {
		if expenses[i].ID == id {
			return &expenses[i], nil
		}
	}
	return nil, nil
}

// Run consumes change messages from the broker until ctx is canceled.
func (w *SyncWorker) Run(ctx context.Context, broker *amqp.Client) error {
	return broker.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
		return w.HandleChange(ctx, msg)
	})
}
