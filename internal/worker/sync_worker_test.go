package worker

import (
	"context"
	"testing"
	"time"

	"lastapp/internal/amqp"
	"lastapp/internal/core"
	"lastapp/internal/kv/memory"
	"lastapp/internal/ledger"
)

type fakeAppender struct {
	appended []core.Expense
}

func (f *fakeAppender) AppendExpense(_ context.Context, e core.Expense) error {
	f.appended = append(f.appended, e)
	return nil
}

func seedExpense(t *testing.T, store *memory.Store, id string) core.Expense {
	t.Helper()
	e := core.Expense{
		ID:          id,
		BudgetID:    "b1",
		Description: "lunch",
		Amount:      core.Money{Cents: 1250},
		Category:    core.CategoryFood,
		CreatedAt:   time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
	l := ledger.New(store)
	l.Load(context.Background())
	if err := l.AddExpense(context.Background(), e); err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	l.Flush()
	return e
}

func TestHandleChangeMirrorsExpenseAdd(t *testing.T) {
	store := memory.New()
	e := seedExpense(t, store, "e1")

	out := &fakeAppender{}
	w := NewSyncWorker(store, out)

	msg := amqp.NewChangeMessage(amqp.EntityExpense, amqp.OpAdd, "e1")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("handle change: %v", err)
	}

	if len(out.appended) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(out.appended))
	}
	if out.appended[0].ID != e.ID || out.appended[0].Amount != e.Amount {
		t.Fatalf("wrong expense mirrored: %+v", out.appended[0])
	}
}

func TestHandleChangeSkipsNonExpenseAdds(t *testing.T) {
	store := memory.New()
	seedExpense(t, store, "e1")

	out := &fakeAppender{}
	w := NewSyncWorker(store, out)

	for _, msg := range []*amqp.ChangeMessage{
		amqp.NewChangeMessage(amqp.EntityBudget, amqp.OpAdd, "b1"),
		amqp.NewChangeMessage(amqp.EntityExpense, amqp.OpDelete, "e1"),
	} {
		if err := w.HandleChange(context.Background(), msg); err != nil {
			t.Fatalf("handle %s/%s: %v", msg.Entity, msg.Op, err)
		}
	}

	if len(out.appended) != 0 {
		t.Fatalf("expected nothing mirrored, got %d", len(out.appended))
	}
}

func TestHandleChangeExpenseAlreadyGone(t *testing.T) {
	// Empty store: the expense was deleted before the mirror caught up.
	out := &fakeAppender{}
	w := NewSyncWorker(memory.New(), out)

	msg := amqp.NewChangeMessage(amqp.EntityExpense, amqp.OpAdd, "e1")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("vanished expense must not error: %v", err)
	}
	if len(out.appended) != 0 {
		t.Fatal("nothing should be mirrored")
	}
}
